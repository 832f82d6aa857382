package worker

import (
	"context"
	"io"
	"time"

	bconf "github.com/opst/knitlabel/pkg/configs/backend"
	ptr "github.com/opst/knitlabel/pkg/utils/pointer"
	"github.com/opst/knitlabel/pkg/utils/retry"
	"github.com/opst/knitlabel/pkg/workloads/k8s"
	"github.com/opst/knitlabel/pkg/workloads/metasource"
	kubebatch "k8s.io/api/batch/v1"
	kubecore "k8s.io/api/core/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// name of the container running user code.
const MainContainer = "main"

// label of worker pods telling which network policy they are under.
const NetworkLabel = "knitlabel/network"

type Status string

const (
	Pending Status = "pending"
	Running Status = "running"
	Done    Status = "done"
	Failed  Status = "failed"
)

// Executable describes one worker execution.
type Executable struct {
	// identifier of what is executed: payload id, or sample run id.
	Subject string

	// type of Subject. example: "payload", "sample"
	Kind string

	Image   string
	Args    []string
	Network string

	ProjectId string
	SourceId  string
}

var _ metasource.ResourceBuilder[*bconf.ClusterConfig, *kubebatch.Job] = Executable{}

func (e Executable) Name() string {
	return "worker"
}

func (e Executable) Instance() string {
	return "knitlabel-worker-" + e.Subject
}

func (e Executable) Component() string {
	return "worker"
}

func (e Executable) Id() string {
	return e.Subject
}

func (e Executable) IdType() string {
	return e.Kind
}

func (e Executable) Extras() map[string]string {
	ex := map[string]string{}
	if e.ProjectId != "" {
		ex["project"] = e.ProjectId
	}
	if e.SourceId != "" {
		ex["source"] = e.SourceId
	}
	return ex
}

func (e Executable) ObjectMeta(namespace string) kubeapimeta.ObjectMeta {
	return metasource.ToObjectMeta(e, namespace)
}

// Build k8s Job running the worker once.
//
// The Job is not retried, and is removed by k8s after conf.WorkerTTL() since it finished.
func (e Executable) Build(conf *bconf.ClusterConfig) *kubebatch.Job {
	meta := e.ObjectMeta(conf.Namespace())

	podLabels := map[string]string{}
	for k, v := range meta.Labels {
		podLabels[k] = v
	}
	if e.Network != "" {
		podLabels[NetworkLabel] = e.Network
	}

	automount := conf.ServiceAccount() != ""

	return &kubebatch.Job{
		ObjectMeta: meta,
		Spec: kubebatch.JobSpec{
			Parallelism:             ptr.Ref[int32](1),
			BackoffLimit:            ptr.Ref[int32](0),
			TTLSecondsAfterFinished: ptr.Ref(int32(conf.WorkerTTL() / time.Second)),
			Template: kubecore.PodTemplateSpec{
				ObjectMeta: kubeapimeta.ObjectMeta{
					Labels: podLabels,
				},
				Spec: kubecore.PodSpec{
					RestartPolicy:                kubecore.RestartPolicyNever,
					ServiceAccountName:           conf.ServiceAccount(),
					AutomountServiceAccountToken: &automount,
					EnableServiceLinks:           ptr.Ref(false), // do not expose Service endpoints for user code.
					Containers: []kubecore.Container{
						{
							Name:  MainContainer,
							Image: e.Image,
							Args:  e.Args,
						},
					},
				},
			},
		},
	}
}

type Worker interface {
	// Id returns the Subject of Executable
	Id() string

	// JobStatus returns the status of the job, when it is gotten.
	JobStatus() Status

	// Log follows the log of the worker's main container.
	//
	// # Returns
	//
	// - io.ReadCloser : the log stream of the main container, lines prefixed with timestamps.
	//
	// - error : error if any.
	Log(ctx context.Context) (io.ReadCloser, error)

	// Exit waits for the main container to be terminated.
	//
	// # Returns
	//
	// - exitCode : the exit code of the main container.
	//
	// - reason: the reason of the exit.
	//
	// - error : error if any. For example, when ctx is cancelled.
	Exit(ctx context.Context) (uint8, string, error)

	// Close removes the worker. If it is running, it is aborted.
	Close() error
}

type worker struct {
	id      string
	job     k8s.Job
	cluster k8s.Cluster
	backoff retry.Backoff
}

func (w *worker) Id() string {
	return w.id
}

func (w *worker) JobStatus() Status {
	switch w.job.Status() {
	case k8s.Succeeded:
		return Done
	case k8s.Failed:
		return Failed
	case k8s.Pending:
		return Pending
	default:
		return Running
	}
}

func (w *worker) Log(ctx context.Context) (io.ReadCloser, error) {
	return w.job.Log(ctx, MainContainer)
}

func (w *worker) Exit(ctx context.Context) (uint8, string, error) {
	if code, reason, ok := w.job.ExitCode(MainContainer); ok {
		return code, reason, nil
	}

	prom := <-w.cluster.GetJob(ctx, w.backoff, w.job.Name(), mainHasTerminated)
	if prom.Err != nil {
		return 0, "", prom.Err
	}
	w.job = prom.Value
	code, reason, ok := w.job.ExitCode(MainContainer)
	if !ok {
		// the pod is gone without reporting the container state (e.g. evicted).
		if w.job.Status() == k8s.Succeeded {
			return 0, string(k8s.Succeeded), nil
		}
		return 255, string(k8s.Failed), nil
	}
	return code, reason, nil
}

func (w *worker) Close() error {
	return w.job.Close()
}

var mainHasTerminated k8s.Requirement[k8s.Job] = func(j k8s.Job) error {
	if _, _, ok := j.ExitCode(MainContainer); ok {
		return nil
	}
	switch j.Status() {
	case k8s.Succeeded, k8s.Failed:
		return nil
	}
	return retry.ErrRetry
}

// spawn new Worker and wait for it to start.
//
// # params:
//
// - ctx
//
// - cluster : where the Worker is spawned into
//
// - backoff : interval of checking the worker status
//
// - conf : cluster configuration
//
// - ex : what the worker runs.
//
// # returns
//
// - Worker : started worker. Caller should Close it.
//
// - error : if any. When error is returned, the Job has been removed.
func Spawn(
	ctx context.Context,
	cluster k8s.Cluster,
	backoff retry.Backoff,
	conf *bconf.ClusterConfig,
	ex Executable,
) (Worker, error) {
	prom := <-cluster.NewJob(ctx, backoff, ex.Build(conf), k8s.JobHasStarted)

	if prom.Err != nil {
		if prom.Value != nil {
			prom.Value.Close()
		}
		return nil, prom.Err
	}

	return &worker{
		id:      ex.Subject,
		job:     prom.Value,
		cluster: cluster,
		backoff: backoff,
	}, nil
}
