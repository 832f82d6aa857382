package k8s

import (
	"context"
	"errors"
	"io"

	kubebatch "k8s.io/api/batch/v1"
	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8s "k8s.io/client-go/kubernetes"

	"github.com/opst/knitlabel/pkg/domain/errors/k8serrors"
	"github.com/opst/knitlabel/pkg/utils/retry"
)

// subset of k8s.Interface
type K8sClient interface {
	GetJob(ctx context.Context, namespace string, name string) (*kubebatch.Job, error)
	CreateJob(ctx context.Context, namespace string, spec *kubebatch.Job) (*kubebatch.Job, error)
	DeleteJob(ctx context.Context, namespace string, name string) error

	FindPods(ctx context.Context, namespace string, labelSelector LabelSelector) ([]kubecore.Pod, error)

	// Log follows the log of the container. Each line is prefixed with its timestamp (RFC3339).
	Log(ctx context.Context, namespace string, podname string, container string) (io.ReadCloser, error)
}

// A wrapper for k8s.Interface, to avoid method chains.
type k8sClient struct {
	client k8s.Interface
}

var _ K8sClient = &k8sClient{}

func WrapK8sClient(c k8s.Interface) K8sClient {
	return &k8sClient{client: c}
}

func (k *k8sClient) CreateJob(ctx context.Context, namespace string, job *kubebatch.Job) (*kubebatch.Job, error) {
	return k.client.BatchV1().Jobs(namespace).Create(ctx, job, kubeapimeta.CreateOptions{})
}

func (k *k8sClient) GetJob(ctx context.Context, namespace string, name string) (*kubebatch.Job, error) {
	return k.client.BatchV1().Jobs(namespace).Get(ctx, name, kubeapimeta.GetOptions{})
}

func (k *k8sClient) DeleteJob(ctx context.Context, namespace string, name string) error {
	foreground := kubeapimeta.DeletePropagationForeground
	zero := int64(0)
	return k.client.BatchV1().Jobs(namespace).Delete(ctx, name, kubeapimeta.DeleteOptions{
		GracePeriodSeconds: &zero,
		PropagationPolicy:  &foreground,
	})
}

func (k *k8sClient) FindPods(ctx context.Context, namespace string, labels LabelSelector) ([]kubecore.Pod, error) {
	resp, err := k.client.CoreV1().Pods(namespace).List(ctx, kubeapimeta.ListOptions{
		LabelSelector: labels.QueryString(),
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (k *k8sClient) Log(ctx context.Context, namespace string, podname string, container string) (io.ReadCloser, error) {
	return k.client.
		CoreV1().
		Pods(namespace).
		GetLogs(podname, &kubecore.PodLogOptions{
			Container:  container,
			Follow:     true,
			Timestamps: true,
		}).
		Stream(ctx)
}

type JobStatus string

const (
	// no pods have been started.
	Pending JobStatus = "Pending"

	// a pod has started, and the job has not completed.
	Running JobStatus = "Running"

	Succeeded JobStatus = "Succeeded"
	Failed    JobStatus = "Failed"
)

// Started tells that a pod of the job has run, so its log is readable.
func (s JobStatus) Started() bool {
	return s != Pending
}

// abstraction of k8s job.
type Job interface {
	Name() string
	Namespace() string

	// Status is a SNAPSHOT of the job when the Job is gotten.
	//
	// To refresh, get the Job again via Cluster.
	Status() JobStatus

	// ExitCode returns the exit code of the container.
	//
	// # Return
	//
	// - exitCode : the exit code of the container.
	//
	// - reason: the reason of the termination.
	//
	// - ok : true if the container has been terminated, false otherwise.
	ExitCode(container string) (uint8, string, bool)

	// Log follows the log stream of the container in the first pod of the job.
	Log(ctx context.Context, containerName string) (io.ReadCloser, error)

	// destroy the job. If the job is running or pending, it is aborted.
	Close() error
}

type job struct {
	job    *kubebatch.Job
	pods   []kubecore.Pod
	client K8sClient
	close  func() error
}

var _ Job = &job{}

func (j *job) Name() string {
	return j.job.Name
}

func (j *job) Namespace() string {
	return j.job.Namespace
}

func (j *job) Status() JobStatus {
	for _, sc := range j.job.Status.Conditions {
		if sc.Status != kubecore.ConditionTrue {
			continue
		}
		switch sc.Type {
		case kubebatch.JobComplete:
			return Succeeded
		case kubebatch.JobFailed:
			return Failed
		}
	}

	for _, p := range j.pods {
		switch p.Status.Phase {
		case kubecore.PodRunning, kubecore.PodSucceeded, kubecore.PodFailed:
			return Running
		}
	}
	return Pending
}

func (j *job) Log(ctx context.Context, containerName string) (io.ReadCloser, error) {
	if len(j.pods) == 0 {
		return nil, k8serrors.Missing("pods for job "+j.job.Name, nil)
	}
	pod := j.pods[0]
	return j.client.Log(ctx, pod.Namespace, pod.Name, containerName)
}

func (j *job) ExitCode(container string) (uint8, string, bool) {
	for _, p := range j.pods {
		for _, c := range p.Status.ContainerStatuses {
			if c.Name != container {
				continue
			}
			if term := c.State.Terminated; term != nil {
				return uint8(term.ExitCode), term.Reason, true
			}
			break
		}
	}
	return 0, "", false
}

func (j *job) Close() error {
	if j.close == nil {
		return nil
	}
	return j.close()
}

type Cluster interface {
	Namespace() string
	Domain() string

	// Create new Job and wait for it to satisfy all requirements.
	//
	// # Return
	//
	// Promise which is resolved when the Job is created & satisfied requirements.
	//
	// The Promise may have Error below:
	//
	// - k8serrors.ErrConflict: Job is already created.
	//
	// - k8serrors.ErrMissing: Job is missing after created until meets requirements.
	//
	// - other errors come from Requirements and context.Context
	//
	// Whether or not the Promise has Error, the Job can be created.
	// So, you may need to Close() it.
	NewJob(context.Context, retry.Backoff, *kubebatch.Job, ...Requirement[Job]) retry.Promise[Job]

	// Get existing Job, waiting for it to satisfy all requirements.
	//
	// The Promise may have k8serrors.ErrMissing when the Job is not found.
	GetJob(context.Context, retry.Backoff, string, ...Requirement[Job]) retry.Promise[Job]
}

// Requirement checks if a k8s resource satisfies the requirement.
//
// # Return
//
// - error: nil when satisfied. `retry.ErrRetry` when it should be checked later.
// Otherwise, the reason why it never satisfies.
type Requirement[T any] func(value T) error

func satisfyAll[T any](value T, req []Requirement[T]) error {
	for _, r := range req {
		if err := r(value); err != nil {
			return err
		}
	}
	return nil
}

var JobHaveBeenCreated Requirement[Job] = func(Job) error {
	return nil
}

// JobHasStarted is satisfied when a pod of the job has been running (or finished).
var JobHasStarted Requirement[Job] = func(j Job) error {
	if j.Status().Started() {
		return nil
	}
	return retry.ErrRetry
}

type k8sCluster struct {
	client    K8sClient
	namespace string
	domain    string
}

var _ Cluster = &k8sCluster{}

// Attach kubernetes cluster.
//
// args:
//   - client: k8s client
//   - namespace: k8s namespace where jobs are created
//   - domain: k8s-internal domain name. If empty string is passed, it uses `"cluster.local"`.
func AttachCluster(client K8sClient, namespace string, domain string) Cluster {
	if domain == "" {
		domain = "cluster.local"
	}
	return &k8sCluster{client: client, namespace: namespace, domain: domain}
}

func (c *k8sCluster) Namespace() string {
	return c.namespace
}

func (c *k8sCluster) Domain() string {
	return c.domain
}

func (c *k8sCluster) closer(name string) func() error {
	return func() error {
		err := c.client.DeleteJob(context.Background(), c.namespace, name)
		if kubeerr.IsNotFound(err) {
			return nil
		}
		return err
	}
}

// findPods lists pods of the job.
//
// Pods are selected by the job's selector, or by its pod template labels
// when the selector is not populated yet.
func (c *k8sCluster) findPods(ctx context.Context, j *kubebatch.Job) []kubecore.Pod {
	labels := j.Spec.Template.Labels
	if j.Spec.Selector != nil && len(j.Spec.Selector.MatchLabels) != 0 {
		labels = j.Spec.Selector.MatchLabels
	}
	if len(labels) == 0 {
		return nil
	}
	pods, err := c.client.FindPods(ctx, c.namespace, LabelsToSelector(labels))
	if err != nil {
		return nil
	}
	return pods
}

func (c *k8sCluster) NewJob(
	ctx context.Context, b retry.Backoff, j *kubebatch.Job,
	requirements ...Requirement[Job],
) retry.Promise[Job] {
	if len(requirements) == 0 {
		requirements = []Requirement[Job]{JobHaveBeenCreated}
	}
	if err := ctx.Err(); err != nil {
		return retry.Failed[Job](err)
	}

	created, err := c.client.CreateJob(ctx, c.namespace, j)
	if err != nil {
		if kubeerr.IsAlreadyExists(err) {
			return retry.Failed[Job](k8serrors.Conflict("job "+j.Name, err))
		}
		return retry.Failed[Job](err)
	}

	ret := &job{job: created, client: c.client, close: c.closer(created.Name)}
	ret.pods = c.findPods(ctx, created)

	if err := satisfyAll[Job](ret, requirements); err == nil {
		return retry.Ok[Job](ret)
	} else if !errors.Is(err, retry.ErrRetry) {
		return retry.Failed[Job](err)
	}
	return c.GetJob(ctx, b, created.Name, requirements...)
}

func (c *k8sCluster) GetJob(
	ctx context.Context, b retry.Backoff, name string,
	requirements ...Requirement[Job],
) retry.Promise[Job] {
	if len(requirements) == 0 {
		requirements = []Requirement[Job]{JobHaveBeenCreated}
	}
	_close := c.closer(name)

	return retry.Go(ctx, b, func() (Job, error) {
		got, err := c.client.GetJob(ctx, c.namespace, name)
		if err != nil {
			if kubeerr.IsNotFound(err) {
				return nil, k8serrors.Missing("job "+name, err)
			}
			return nil, err
		}

		ret := &job{job: got, client: c.client, close: _close}
		ret.pods = c.findPods(ctx, got)

		if err := satisfyAll[Job](ret, requirements); err != nil {
			return ret, err
		}
		return ret, nil
	})
}
