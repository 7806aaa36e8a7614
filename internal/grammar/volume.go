package grammar

import (
	"strings"

	corev1 "k8s.io/api/core/v1"
)

// DefaultFileMode is the platform default mode for projected files (0644).
const DefaultFileMode int32 = 0o644

// Volume parses a volume expression:
//
//	/host/path                           host directory
//	secret::name[:mode]                  secret, optional octal default mode
//	map::key[=path][:mode][,key...]      config map items
//
// A config map's default mode is the largest explicit item mode, set only
// when it differs from DefaultFileMode.
func Volume(name, expr string) corev1.Volume {
	expr = strings.TrimSpace(expr)
	vol := corev1.Volume{Name: name}

	mapName, mappings, ok := strings.Cut(expr, "::")
	if !ok {
		dir := corev1.HostPathDirectory
		vol.HostPath = &corev1.HostPathVolumeSource{Path: expr, Type: &dir}
		return vol
	}

	if mapName == "secret" {
		src := &corev1.SecretVolumeSource{SecretName: mappings}
		if secretName, modeText, ok := strings.Cut(mappings, ":"); ok {
			src.SecretName = secretName
			if mode, ok := octal(modeText); ok {
				src.DefaultMode = &mode
			}
		}
		vol.Secret = src
		return vol
	}

	var maxMode int32
	src := &corev1.ConfigMapVolumeSource{
		LocalObjectReference: corev1.LocalObjectReference{Name: mapName},
	}
	for _, raw := range splitList(mappings, ",") {
		item, mode := configItem(strings.TrimSpace(raw))
		if mode != nil && *mode > maxMode {
			maxMode = *mode
		}
		src.Items = append(src.Items, item)
	}
	if maxMode > 0 && maxMode != DefaultFileMode {
		src.DefaultMode = &maxMode
	}
	vol.ConfigMap = src
	return vol
}

func configItem(raw string) (corev1.KeyToPath, *int32) {
	item := corev1.KeyToPath{Key: raw, Path: raw}
	var modeText string
	if key, path, ok := strings.Cut(raw, "="); ok {
		item.Key = key
		item.Path, modeText, _ = strings.Cut(path, ":")
	} else {
		item.Key, modeText, _ = strings.Cut(raw, ":")
		item.Path = item.Key
	}
	if modeText == "" {
		return item, nil
	}
	mode, ok := octal(modeText)
	if !ok {
		return item, nil
	}
	item.Mode = &mode
	return item, &mode
}

// ConfigItems returns the config map items referenced by a volume
// expression, or nil when the expression is not a config map.
func ConfigItems(expr string) (mapName string, items []corev1.KeyToPath) {
	vol := Volume("", expr)
	if vol.ConfigMap == nil {
		return "", nil
	}
	return vol.ConfigMap.Name, vol.ConfigMap.Items
}
