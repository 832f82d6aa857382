package backend

import (
	"time"
)

type BackendConfig struct {
	port         int32
	logLevel     string
	database     *DatabaseConfig
	cluster      *ClusterConfig
	execution    *ExecutionConfig
	storage      *StorageConfig
	notify       *NotifyConfig
	telemetry    *TelemetryConfig
	embedding    *EmbeddingConfig
	auth         *AuthConfig
	notification *NotificationConfig
}

func (c *BackendConfig) Port() int32 {
	return c.port
}

// log level of the daemon. one of debug, info, warn, error or off. default = "info"
func (c *BackendConfig) LogLevel() string {
	return c.logLevel
}

func (c *BackendConfig) Database() *DatabaseConfig {
	return c.database
}

func (c *BackendConfig) Cluster() *ClusterConfig {
	return c.cluster
}

func (c *BackendConfig) Execution() *ExecutionConfig {
	return c.execution
}

func (c *BackendConfig) Storage() *StorageConfig {
	return c.storage
}

func (c *BackendConfig) Notify() *NotifyConfig {
	return c.notify
}

// Telemetry sink. It can be nil, then telemetry is disabled.
func (c *BackendConfig) Telemetry() *TelemetryConfig {
	return c.telemetry
}

func (c *BackendConfig) Embedding() *EmbeddingConfig {
	return c.embedding
}

func (c *BackendConfig) Auth() *AuthConfig {
	return c.auth
}

func (c *BackendConfig) Notification() *NotificationConfig {
	return c.notification
}

type DatabaseConfig struct {
	url              string
	schemaRepository string
}

// Connection string for database.
func (d *DatabaseConfig) URL() string {
	return d.url
}

// Directory containing schema versions. It can be empty, then the daemon flag is used.
func (d *DatabaseConfig) SchemaRepository() string {
	return d.schemaRepository
}

// Configuration for the k8s cluster where workers run.
type ClusterConfig struct {
	namespace      string
	domain         string
	serviceAccount string
	workerTTL      time.Duration
}

// k8s namespace where workers are deployed.
func (k *ClusterConfig) Namespace() string {
	return k.namespace
}

// k8s domain. default = "cluster.local"
func (k *ClusterConfig) Domain() string {
	return k.domain
}

// Service account of worker pods. It can be empty.
func (k *ClusterConfig) ServiceAccount() string {
	return k.serviceAccount
}

// How long finished worker Jobs are kept. default = 10m
func (k *ClusterConfig) WorkerTTL() time.Duration {
	return k.workerTTL
}

type ExecutionConfig struct {
	ruleBasedImage string
	learnedImage   string
	network        string
	logTimezone    *time.Location
	linkExpiry     time.Duration
}

// Image running labeling functions.
func (e *ExecutionConfig) RuleBasedImage() string {
	return e.ruleBasedImage
}

// Image running active learners.
func (e *ExecutionConfig) LearnedImage() string {
	return e.learnedImage
}

// Network name which workers are attached to.
func (e *ExecutionConfig) Network() string {
	return e.network
}

// Timezone which payload logs are written in. default = Europe/Berlin
func (e *ExecutionConfig) LogTimezone() *time.Location {
	return e.logTimezone
}

// Lifetime of links passed to workers. default = 2h
func (e *ExecutionConfig) LinkExpiry() time.Duration {
	return e.linkExpiry
}

// Configuration for the object storage exchanging files with workers.
type StorageConfig struct {
	endpoint        string
	accessKeyId     string
	secretAccessKey string
	region          string
	useSSL          bool
}

func (s *StorageConfig) Endpoint() string {
	return s.endpoint
}

func (s *StorageConfig) AccessKeyID() string {
	return s.accessKeyId
}

func (s *StorageConfig) SecretAccessKey() string {
	return s.secretAccessKey
}

func (s *StorageConfig) Region() string {
	return s.region
}

func (s *StorageConfig) UseSSL() bool {
	return s.useSSL
}

type NotifyConfig struct {
	url string
}

// Base URL of the websocket notifier. Messages are posted to "<url>/notify".
func (n *NotifyConfig) URL() string {
	return n.url
}

type TelemetryConfig struct {
	url string
}

// URL of the telemetry service. It is "" when telemetry is not configured.
func (t *TelemetryConfig) URL() string {
	if t == nil {
		return ""
	}
	return t.url
}

type EmbeddingConfig struct {
	url string
}

// Base URL of the embedding service.
func (e *EmbeddingConfig) URL() string {
	return e.url
}

type AuthConfig struct {
	keyFile string
}

// Path to the HS256 key verifying bearer tokens.
func (a *AuthConfig) KeyFile() string {
	return a.keyFile
}

type NotificationConfig struct {
	dedupeWindow time.Duration
}

// Notifications of the same type for the same user and project are not created again in this window.
// default = 5s
func (n *NotificationConfig) DedupeWindow() time.Duration {
	return n.dedupeWindow
}
