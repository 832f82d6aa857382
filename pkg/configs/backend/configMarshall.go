package backend

import (
	"fmt"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/backend.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type BackendConfigMarshall struct {
	Port         int32                       `yaml:"port"`
	LogLevel     string                      `yaml:"logLevel,omitempty"`
	Database     *DatabaseConfigMarshall     `yaml:"database"`
	Cluster      *ClusterConfigMarshall      `yaml:"cluster"`
	Execution    *ExecutionConfigMarshall    `yaml:"execution"`
	Storage      *StorageConfigMarshall      `yaml:"storage"`
	Notify       *NotifyConfigMarshall       `yaml:"notify"`
	Telemetry    *TelemetryConfigMarshall    `yaml:"telemetry,omitempty"`
	Embedding    *EmbeddingConfigMarshall    `yaml:"embedding"`
	Auth         *AuthConfigMarshall         `yaml:"auth"`
	Notification *NotificationConfigMarshall `yaml:"notification,omitempty"`
}

var _ Marshalled[*BackendConfig] = &BackendConfigMarshall{}

func (b *BackendConfigMarshall) trySeal(path string) *BackendConfig {
	logLevel := b.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}

	var telemetry *TelemetryConfig
	if b.Telemetry != nil {
		telemetry = b.Telemetry.trySeal(path + ".telemetry")
	}

	notification := b.Notification
	if notification == nil {
		notification = &NotificationConfigMarshall{}
	}

	return &BackendConfig{
		port:         required(b.Port, path+".port"),
		logLevel:     logLevel,
		database:     nonnil(b.Database, path+".database").trySeal(path + ".database"),
		cluster:      nonnil(b.Cluster, path+".cluster").trySeal(path + ".cluster"),
		execution:    nonnil(b.Execution, path+".execution").trySeal(path + ".execution"),
		storage:      nonnil(b.Storage, path+".storage").trySeal(path + ".storage"),
		notify:       nonnil(b.Notify, path+".notify").trySeal(path + ".notify"),
		telemetry:    telemetry,
		embedding:    nonnil(b.Embedding, path+".embedding").trySeal(path + ".embedding"),
		auth:         nonnil(b.Auth, path+".auth").trySeal(path + ".auth"),
		notification: notification.trySeal(path + ".notification"),
	}
}

type DatabaseConfigMarshall struct {
	URL              string `yaml:"url"`
	SchemaRepository string `yaml:"schemaRepository,omitempty"`
}

func (d *DatabaseConfigMarshall) trySeal(path string) *DatabaseConfig {
	return &DatabaseConfig{
		url:              required(d.URL, path+".url"),
		schemaRepository: d.SchemaRepository,
	}
}

// Configuration of the cluster running workers.
//
// This type is marshalling value and mutable.
// Consider to use immutable version, `ClusterConfig`.
type ClusterConfigMarshall struct {
	Namespace      string `yaml:"namespace"`
	Domain         string `yaml:"domain,omitempty"`
	ServiceAccount string `yaml:"serviceAccount,omitempty"`
	WorkerTTL      string `yaml:"workerTTL,omitempty"`
}

func (km *ClusterConfigMarshall) trySeal(path string) *ClusterConfig {
	domain := km.Domain
	if domain == "" {
		domain = "cluster.local"
	}
	return &ClusterConfig{
		namespace:      required(km.Namespace, path+".namespace"),
		domain:         domain,
		serviceAccount: km.ServiceAccount,
		workerTTL:      duration(km.WorkerTTL, 10*time.Minute, path+".workerTTL"),
	}
}

type ExecutionConfigMarshall struct {
	RuleBasedImage string `yaml:"ruleBasedImage"`
	LearnedImage   string `yaml:"learnedImage"`
	Network        string `yaml:"network"`
	LogTimezone    string `yaml:"logTimezone,omitempty"`
	LinkExpiry     string `yaml:"linkExpiry,omitempty"`
}

func (em *ExecutionConfigMarshall) trySeal(path string) *ExecutionConfig {
	tzname := em.LogTimezone
	if tzname == "" {
		tzname = "Europe/Berlin"
	}
	tz, err := time.LoadLocation(tzname)
	if err != nil {
		panic(fmt.Errorf("%s.logTimezone can not be loaded: %w", path, err))
	}

	return &ExecutionConfig{
		ruleBasedImage: image(em.RuleBasedImage, path+".ruleBasedImage"),
		learnedImage:   image(em.LearnedImage, path+".learnedImage"),
		network:        required(em.Network, path+".network"),
		logTimezone:    tz,
		linkExpiry:     duration(em.LinkExpiry, 2*time.Hour, path+".linkExpiry"),
	}
}

type StorageConfigMarshall struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	Region          string `yaml:"region,omitempty"`
	UseSSL          bool   `yaml:"useSSL,omitempty"`
}

func (sm *StorageConfigMarshall) trySeal(path string) *StorageConfig {
	return &StorageConfig{
		endpoint:        required(sm.Endpoint, path+".endpoint"),
		accessKeyId:     required(sm.AccessKeyID, path+".accessKeyId"),
		secretAccessKey: required(sm.SecretAccessKey, path+".secretAccessKey"),
		region:          sm.Region,
		useSSL:          sm.UseSSL,
	}
}

type NotifyConfigMarshall struct {
	URL string `yaml:"url"`
}

func (nm *NotifyConfigMarshall) trySeal(path string) *NotifyConfig {
	return &NotifyConfig{url: required(nm.URL, path+".url")}
}

type TelemetryConfigMarshall struct {
	URL string `yaml:"url"`
}

func (tm *TelemetryConfigMarshall) trySeal(path string) *TelemetryConfig {
	return &TelemetryConfig{url: required(tm.URL, path+".url")}
}

type EmbeddingConfigMarshall struct {
	URL string `yaml:"url"`
}

func (em *EmbeddingConfigMarshall) trySeal(path string) *EmbeddingConfig {
	return &EmbeddingConfig{url: required(em.URL, path+".url")}
}

type AuthConfigMarshall struct {
	KeyFile string `yaml:"keyFile"`
}

func (am *AuthConfigMarshall) trySeal(path string) *AuthConfig {
	return &AuthConfig{keyFile: required(am.KeyFile, path+".keyFile")}
}

type NotificationConfigMarshall struct {
	DedupeWindow string `yaml:"dedupeWindow,omitempty"`
}

func (nm *NotificationConfigMarshall) trySeal(path string) *NotificationConfig {
	return &NotificationConfig{
		dedupeWindow: duration(nm.DedupeWindow, 5*time.Second, path+".dedupeWindow"),
	}
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}

func image(v string, path string) string {
	ref := required(v, path)
	if _, err := name.ParseReference(ref); err != nil {
		panic(fmt.Errorf("%s is not an image reference: %w", path, err))
	}
	return ref
}

func duration(v string, defaultValue time.Duration, path string) time.Duration {
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed: %w", path, err))
	}
	if d <= 0 {
		panic(fmt.Errorf("%s should be positive: %s", path, v))
	}
	return d
}
