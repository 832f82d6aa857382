package kubeutil

import (
	"os"
	"path/filepath"

	xe "github.com/opst/knitlabel/pkg/errors"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Kubeconfig returns the path of kubeconfig file to be used.
//
// Candidates are, from the least priority,
//
// - `~/.kube/config`
//
// - environmental variable `KUBECONFIG`
//
// - the file found first from searchPath
//
// It returns "" when no candidates are existing files.
func Kubeconfig(searchPath ...string) string {
	isFile := func(p string) bool {
		s, err := os.Stat(p)
		return err == nil && !s.IsDir()
	}

	for _, sp := range searchPath {
		if isFile(sp) {
			return sp
		}
	}
	if k := os.Getenv("KUBECONFIG"); k != "" && isFile(k) {
		return k
	}
	if home := homedir.HomeDir(); home != "" {
		if k := filepath.Join(home, ".kube", "config"); isFile(k) {
			return k
		}
	}
	return ""
}

// ConnectToK8s builds *kubernetes.Clientset from the kubeconfig found by Kubeconfig.
//
// When no kubeconfig is found, it uses in-cluster config.
func ConnectToK8s(kubeconfigSearchPath ...string) (*kubernetes.Clientset, error) {
	var config *rest.Config
	var err error
	if kubeconfig := Kubeconfig(kubeconfigSearchPath...); kubeconfig == "" {
		config, err = rest.InClusterConfig()
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, xe.Wrap(err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return clientset, nil
}
