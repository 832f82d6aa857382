package backend

import (
	"os"

	"gopkg.in/yaml.v3"
)

// load labeld config from a file.
//
// args:
//   - filepath: filepath refers a config file.
//
// returns *BackendConfig, error:
//
//	When loading success, returns `(*BackendConfig, nil)`.
//	Otherwise, returns `(nil, error)`.
//
// It panics when the file is parsed but misconfigured.
func LoadBackendConfig(filepath string) (*BackendConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (out *BackendConfig, err error) {
	var _out *BackendConfigMarshall
	err = yaml.Unmarshal(conf, &_out)
	if err != nil {
		return nil, err
	}
	if _out == nil {
		_out = &BackendConfigMarshall{}
	}
	out = TrySeal[*BackendConfig](_out)
	return out, nil
}
