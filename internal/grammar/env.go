package grammar

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
)

// FieldRefBlock names the env table whose entries are downward API paths.
const FieldRefBlock = "fieldRef"

// Environment converts an env table into container variables. Scalar
// entries are literal values. A nested table maps variables to keys of the
// config map it is named after, or of the secret of that name when
// isSecret reports one. The nested table named fieldRef maps variables to
// pod field paths. Output is ordered by name, nested tables in place of
// their own name.
func Environment(block map[string]any, isSecret func(name string) bool) []corev1.EnvVar {
	var env []corev1.EnvVar
	for _, name := range sortedKeys(block) {
		nested, ok := block[name].(map[string]any)
		if !ok {
			env = append(env, corev1.EnvVar{Name: name, Value: scalar(block[name])})
			continue
		}
		for _, key := range sortedKeys(nested) {
			env = append(env, corev1.EnvVar{Name: key, ValueFrom: envSource(name, scalar(nested[key]), isSecret)})
		}
	}
	return env
}

func envSource(block, ref string, isSecret func(string) bool) *corev1.EnvVarSource {
	switch {
	case block == FieldRefBlock:
		return &corev1.EnvVarSource{FieldRef: &corev1.ObjectFieldSelector{FieldPath: ref}}
	case isSecret != nil && isSecret(block):
		return &corev1.EnvVarSource{SecretKeyRef: &corev1.SecretKeySelector{
			LocalObjectReference: corev1.LocalObjectReference{Name: block},
			Key:                  ref,
		}}
	default:
		return &corev1.EnvVarSource{ConfigMapKeyRef: &corev1.ConfigMapKeySelector{
			LocalObjectReference: corev1.LocalObjectReference{Name: block},
			Key:                  ref,
		}}
	}
}

func scalar(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
