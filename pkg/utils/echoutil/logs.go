package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// LogHandlerFunc logs each request and its response with the time taken.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		meth := c.Request().Method
		path := c.Request().URL
		begin := time.Now()
		c.Logger().Infof("< request @[%s] %s %s", begin, meth, path)

		err := next(c)

		end := time.Now()
		if err != nil {
			c.Logger().Warnf(
				"> response for %s %s in %v / error = %+v",
				meth, path, end.Sub(begin), err,
			)
		} else {
			c.Logger().Infof(
				"> response for %s %s in %v / status = %d",
				meth, path, end.Sub(begin), c.Response().Status,
			)
		}
		return err
	}
}

// Level parses a log level name.
//
// "" is warn. Unknown names are also treated as warn, with ok = false.
func Level(loglevel string) (lvl log.Lvl, ok bool) {
	switch strings.ToLower(loglevel) {
	case "debug":
		return log.DEBUG, true
	case "info":
		return log.INFO, true
	case "warn", "":
		return log.WARN, true
	case "error":
		return log.ERROR, true
	case "off":
		return log.OFF, true
	default:
		return log.WARN, false
	}
}

func SetLevel(e *echo.Echo, loglevel string) {
	lvl, ok := Level(loglevel)
	e.Logger.SetLevel(lvl)
	if !ok {
		e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
	}
}
