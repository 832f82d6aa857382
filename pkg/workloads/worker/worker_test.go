package worker_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	bconf "github.com/opst/knitlabel/pkg/configs/backend"
	"github.com/opst/knitlabel/pkg/utils/cmp"
	"github.com/opst/knitlabel/pkg/utils/retry"
	"github.com/opst/knitlabel/pkg/utils/try"
	"github.com/opst/knitlabel/pkg/workloads/k8s"
	"github.com/opst/knitlabel/pkg/workloads/worker"
	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

const namespace = "knitlabel-testing"

func clusterConfig(t *testing.T) *bconf.ClusterConfig {
	t.Helper()
	return bconf.TrySeal[*bconf.ClusterConfig](&bconf.ClusterConfigMarshall{
		Namespace:      namespace,
		ServiceAccount: "worker-sa",
		WorkerTTL:      "90s",
	})
}

func executable() worker.Executable {
	return worker.Executable{
		Subject:   "11111111-2222-3333-4444-555555555555",
		Kind:      "payload",
		Image:     "registry.example.com/lf-exec-env:v1",
		Args:      []string{"http://docbin", "http://fn", "http://kb", "1.0", "en", "http://upload"},
		Network:   "labeling-network",
		ProjectId: "project-1",
		SourceId:  "source-1",
	}
}

func TestExecutable_Build(t *testing.T) {
	conf := clusterConfig(t)
	job := executable().Build(conf)

	if job.Name != "knitlabel-worker-11111111-2222-3333-4444-555555555555" {
		t.Errorf("name: %s", job.Name)
	}
	if job.Namespace != namespace {
		t.Errorf("namespace: %s", job.Namespace)
	}
	if *job.Spec.BackoffLimit != 0 {
		t.Errorf("backoffLimit: %d", *job.Spec.BackoffLimit)
	}
	if *job.Spec.TTLSecondsAfterFinished != 90 {
		t.Errorf("ttl: %d", *job.Spec.TTLSecondsAfterFinished)
	}

	pod := job.Spec.Template
	if pod.Spec.RestartPolicy != kubecore.RestartPolicyNever {
		t.Errorf("restartPolicy: %s", pod.Spec.RestartPolicy)
	}
	if pod.Spec.ServiceAccountName != "worker-sa" || !*pod.Spec.AutomountServiceAccountToken {
		t.Errorf("service account: %s (automount %v)", pod.Spec.ServiceAccountName, *pod.Spec.AutomountServiceAccountToken)
	}
	if len(pod.Spec.Containers) != 1 {
		t.Fatalf("containers: %+v", pod.Spec.Containers)
	}
	main := pod.Spec.Containers[0]
	if main.Name != worker.MainContainer || main.Image != "registry.example.com/lf-exec-env:v1" {
		t.Errorf("main container: %+v", main)
	}
	if !cmp.SliceEq(main.Args, executable().Args) {
		t.Errorf("args: %+v", main.Args)
	}

	for k, v := range map[string]string{
		"app.kubernetes.io/instance":  job.Name,
		"app.kubernetes.io/component": "worker",
		"knitlabel/worker.payload":    "11111111-2222-3333-4444-555555555555",
		"knitlabel/worker.project":    "project-1",
		"knitlabel/worker.source":     "source-1",
		worker.NetworkLabel:           "labeling-network",
	} {
		if got := pod.Labels[k]; got != v {
			t.Errorf("pod label %s: %s (want %s)", k, got, v)
		}
	}
	if _, ok := job.Labels[worker.NetworkLabel]; ok {
		t.Errorf("network label should be on pods only: %+v", job.Labels)
	}
}

func TestSpawn(t *testing.T) {
	conf := clusterConfig(t)
	backoff := retry.StaticBackoff(time.Millisecond)

	podOf := func(ex worker.Executable, status kubecore.PodStatus) *kubecore.Pod {
		return &kubecore.Pod{
			ObjectMeta: kubeapimeta.ObjectMeta{
				Name:      ex.Instance() + "-pod",
				Namespace: namespace,
				Labels:    ex.Build(conf).Spec.Template.Labels,
			},
			Status: status,
		}
	}

	t.Run("when the pod has run, it streams the log and tells the exit code", func(t *testing.T) {
		ctx := context.Background()
		ex := executable()
		clientset := fake.NewSimpleClientset(podOf(ex, kubecore.PodStatus{
			Phase: kubecore.PodFailed,
			ContainerStatuses: []kubecore.ContainerStatus{
				{
					Name: worker.MainContainer,
					State: kubecore.ContainerState{
						Terminated: &kubecore.ContainerStateTerminated{ExitCode: 3, Reason: "Error"},
					},
				},
			},
		}))
		cluster := k8s.AttachCluster(k8s.WrapK8sClient(clientset), namespace, "")

		testee := try.To(worker.Spawn(ctx, cluster, backoff, conf, ex)).OrFatal(t)

		if testee.Id() != ex.Subject {
			t.Errorf("id: %s", testee.Id())
		}
		if testee.JobStatus() != worker.Running {
			t.Errorf("status: %s", testee.JobStatus())
		}

		log := try.To(testee.Log(ctx)).OrFatal(t)
		content := try.To(io.ReadAll(log)).OrFatal(t)
		log.Close()
		if string(content) != "fake logs" {
			t.Errorf("log: %s", content)
		}

		code, reason, err := testee.Exit(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if code != 3 || reason != "Error" {
			t.Errorf("exit: (%d, %s)", code, reason)
		}

		if err := testee.Close(); err != nil {
			t.Fatal(err)
		}
		_, err = clientset.BatchV1().Jobs(namespace).Get(ctx, ex.Instance(), kubeapimeta.GetOptions{})
		if !kubeerr.IsNotFound(err) {
			t.Errorf("job should be deleted: %v", err)
		}
	})

	t.Run("when the pod does not start until the context is done, it removes the job", func(t *testing.T) {
		ex := executable()
		clientset := fake.NewSimpleClientset()
		cluster := k8s.AttachCluster(k8s.WrapK8sClient(clientset), namespace, "")

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := worker.Spawn(ctx, cluster, backoff, conf, ex)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("unexpected error: %v", err)
		}

		_, err = clientset.BatchV1().Jobs(namespace).Get(context.Background(), ex.Instance(), kubeapimeta.GetOptions{})
		if !kubeerr.IsNotFound(err) {
			t.Errorf("job should be deleted: %v", err)
		}
	})

	t.Run("when the job is created already, it returns conflict", func(t *testing.T) {
		ctx := context.Background()
		ex := executable()
		clientset := fake.NewSimpleClientset(ex.Build(conf))
		cluster := k8s.AttachCluster(k8s.WrapK8sClient(clientset), namespace, "")

		_, err := worker.Spawn(ctx, cluster, backoff, conf, ex)
		if err == nil {
			t.Fatal("expected error, but nil")
		}
	})
}
