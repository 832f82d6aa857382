package metasource

import (
	"fmt"

	"github.com/opst/knitlabel/pkg/buildtime"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type SpecBuilder[C any, D any] interface {
	// Build k8s resource descriptor(s)
	Build(conf C) D
}

// knitlabel component metadata which is deployed in k8s cluster.
//
// ToLabels converts MetaSource to k8s labels.
type MetaSource interface {
	// The name of application/resource.
	//
	// This is set as a value of k8s label "app.kubernetes.io/name".
	Name() string

	// This is set as a value of k8s label "app.kubernetes.io/instance"
	// AND ALSO `ObjectMeta.Name` .
	Instance() string

	// Where is this positioned in system archetecture.
	//
	// This is set as a value of k8s label "app.kubernetes.io/component".
	Component() string

	// Identifier of entity in knitlabel object model.
	Id() string

	// type of "Id()"
	//
	// example: payload, sample, ...
	IdType() string

	// convert to ObjectMeta
	ObjectMeta(namespace string) kubeapimeta.ObjectMeta
}

type Extraer interface {
	// Extra labels.
	//
	// See document of `ToLabels` for more details.
	Extras() map[string]string
}

type ResourceBuilder[C any, D any] interface {
	MetaSource
	SpecBuilder[C, D]
}

// convert from MetaSource to k8s labels, including "recomended labels".
//
// https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
//
// # Recomended Labels:
//
// - "app.kubernetes.io/version"    : build version of the knitlabel.
//
// - "app.kubernetes.io/part-of"    : "knitlabel"
//
// - "app.kubernetes.io/managed-by" : "knitlabel"
//
// - "app.kubernetes.io/component"  : s.Component()
//
// - "app.kubernetes.io/name"       : s.Name()
//
// - "app.kubernetes.io/instance"   : s.Instance()
//
// # knitlabel Labels:
//
// - "knitlabel/${s.Name()}.${s.IdType()}" : s.Id()
//
// - "knitlabel/${s.Name()}.KEY"           : s.Extras()[KEY] (if `s` is an Extraer)
func ToLabels(s MetaSource) map[string]string {
	prefix := fmt.Sprintf("knitlabel/%s.", s.Name())

	l := map[string]string{
		"app.kubernetes.io/version":    buildtime.VERSION(),
		"app.kubernetes.io/name":       s.Name(),
		"app.kubernetes.io/instance":   s.Instance(),
		"app.kubernetes.io/component":  s.Component(),
		"app.kubernetes.io/part-of":    "knitlabel",
		"app.kubernetes.io/managed-by": "knitlabel",

		prefix + s.IdType(): s.Id(),
	}

	if withEx, ok := s.(Extraer); ok {
		for k, v := range withEx.Extras() {
			l[prefix+k] = v
		}
	}

	return l
}

// default (and reference) implimentation of MetaSource.ObjectMeta.
func ToObjectMeta(m MetaSource, namespace string) kubeapimeta.ObjectMeta {
	return kubeapimeta.ObjectMeta{
		Name:      m.Instance(),
		Namespace: namespace,
		Labels:    ToLabels(m),
	}
}
