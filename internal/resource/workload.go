package resource

import (
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/transfigure/cli/internal/apiversion"
	"github.com/transfigure/cli/internal/grammar"
	"github.com/transfigure/cli/internal/spec"
)

// Job defaults.
const (
	DefaultBackoffLimit  int32 = 6
	DefaultRestartPolicy       = corev1.RestartPolicyNever
)

func (a *Assembler) template(t *spec.Table) (corev1.PodTemplateSpec, error) {
	ps, err := a.podSpec(t)
	if err != nil {
		return corev1.PodTemplateSpec{}, err
	}
	return corev1.PodTemplateSpec{
		ObjectMeta: metav1.ObjectMeta{Labels: podLabels(t)},
		Spec:       ps,
	}, nil
}

func selector(t *spec.Table) *metav1.LabelSelector {
	return &metav1.LabelSelector{MatchLabels: map[string]string{"app": appLabel(t)}}
}

func intOrString(v any) *intstr.IntOrString {
	switch n := v.(type) {
	case nil:
		return nil
	case int64:
		return ptr.To(intstr.FromInt32(int32(n)))
	case int:
		return ptr.To(intstr.FromInt32(int32(n)))
	case float64:
		return ptr.To(intstr.FromInt32(int32(n)))
	case string:
		return ptr.To(intstr.Parse(n))
	}
	return nil
}

func optional(n int32) *int32 {
	if n == 0 {
		return nil
	}
	return &n
}

func (a *Assembler) deployment(t *spec.Table) (*appsv1.Deployment, error) {
	tmpl, err := a.template(t)
	if err != nil {
		return nil, err
	}
	return &appsv1.Deployment{
		TypeMeta:   a.typeMeta(apiversion.Deployment, "Deployment"),
		ObjectMeta: objectMeta(t, t.Name, true),
		Spec: appsv1.DeploymentSpec{
			Replicas:                ptr.To(t.Replicas()),
			RevisionHistoryLimit:    ptr.To(t.Deployment.History),
			Selector:                selector(t),
			Template:                tmpl,
			MinReadySeconds:         t.Deployment.Ready,
			ProgressDeadlineSeconds: optional(t.Deployment.Deadline),
			Strategy: appsv1.DeploymentStrategy{
				Type: appsv1.RollingUpdateDeploymentStrategyType,
				RollingUpdate: &appsv1.RollingUpdateDeployment{
					MaxUnavailable: intOrString(t.Deployment.Unavailable),
					MaxSurge:       intOrString(t.Deployment.Surge),
				},
			},
		},
	}, nil
}

func (a *Assembler) statefulSet(t *spec.Table) (*appsv1.StatefulSet, error) {
	tmpl, err := a.template(t)
	if err != nil {
		return nil, err
	}
	return &appsv1.StatefulSet{
		TypeMeta:   a.typeMeta(apiversion.StatefulSet, "StatefulSet"),
		ObjectMeta: objectMeta(t, t.Name, true),
		Spec: appsv1.StatefulSetSpec{
			ServiceName:          t.ServiceName(),
			Replicas:             ptr.To(t.Replicas()),
			RevisionHistoryLimit: ptr.To(t.Deployment.History),
			MinReadySeconds:      t.Deployment.Ready,
			Selector:             selector(t),
			Template:             tmpl,
			UpdateStrategy: appsv1.StatefulSetUpdateStrategy{
				Type: appsv1.RollingUpdateStatefulSetStrategyType,
			},
			VolumeClaimTemplates: grammar.Stores(t.Storage, t.Namespace),
		},
	}, nil
}

func (a *Assembler) daemonSet(t *spec.Table) (*appsv1.DaemonSet, error) {
	tmpl, err := a.template(t)
	if err != nil {
		return nil, err
	}
	return &appsv1.DaemonSet{
		TypeMeta:   a.typeMeta(apiversion.DaemonSet, "DaemonSet"),
		ObjectMeta: objectMeta(t, t.Name, true),
		Spec: appsv1.DaemonSetSpec{
			RevisionHistoryLimit: ptr.To(t.Deployment.History),
			MinReadySeconds:      t.Deployment.Ready,
			Selector:             selector(t),
			Template:             tmpl,
			UpdateStrategy: appsv1.DaemonSetUpdateStrategy{
				Type: appsv1.RollingUpdateDaemonSetStrategyType,
				RollingUpdate: &appsv1.RollingUpdateDaemonSet{
					MaxUnavailable: intOrString(t.Deployment.Unavailable),
				},
			},
		},
	}, nil
}

func (a *Assembler) jobSpec(t *spec.Table) (batchv1.JobSpec, error) {
	tmpl, err := a.template(t)
	if err != nil {
		return batchv1.JobSpec{}, err
	}
	tmpl.Spec.RestartPolicy = DefaultRestartPolicy
	if t.Deployment.Restart != "" {
		tmpl.Spec.RestartPolicy = corev1.RestartPolicy(t.Deployment.Restart)
	}
	completions := t.Deployment.Completions
	if completions == 0 {
		completions = t.Replicas()
	}
	backoff := t.Deployment.Backoff
	if backoff == 0 {
		backoff = DefaultBackoffLimit
	}
	return batchv1.JobSpec{
		Parallelism:  ptr.To(t.Replicas()),
		Completions:  ptr.To(completions),
		BackoffLimit: ptr.To(backoff),
		Template:     tmpl,
	}, nil
}

func (a *Assembler) job(t *spec.Table) (*batchv1.Job, error) {
	js, err := a.jobSpec(t)
	if err != nil {
		return nil, err
	}
	if t.Deployment.TimeLimit > 0 {
		js.ActiveDeadlineSeconds = ptr.To(t.Deployment.TimeLimit)
	}
	return &batchv1.Job{
		TypeMeta:   a.typeMeta(apiversion.Job, "Job"),
		ObjectMeta: objectMeta(t, t.Name, true),
		Spec:       js,
	}, nil
}

// cronJob schedules the job. Runs may overlap when more than one container
// is requested; single-completion jobs never overlap; otherwise a new run
// replaces the old one.
func (a *Assembler) cronJob(t *spec.Table) (*batchv1.CronJob, error) {
	js, err := a.jobSpec(t)
	if err != nil {
		return nil, err
	}
	policy := batchv1.ReplaceConcurrent
	switch {
	case t.Scale.Containers > 1:
		policy = batchv1.AllowConcurrent
	case *js.Completions == 1:
		policy = batchv1.ForbidConcurrent
	}
	cj := &batchv1.CronJob{
		TypeMeta:   a.typeMeta(apiversion.CronJob, "CronJob"),
		ObjectMeta: objectMeta(t, t.Name, true),
		Spec: batchv1.CronJobSpec{
			Schedule:                   t.Deployment.Schedule,
			ConcurrencyPolicy:          policy,
			SuccessfulJobsHistoryLimit: ptr.To(t.Deployment.History),
			FailedJobsHistoryLimit:     ptr.To(t.Deployment.History),
			JobTemplate: batchv1.JobTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: podLabels(t)},
				Spec:       js,
			},
		},
	}
	if t.Deployment.TimeLimit > 0 {
		cj.Spec.StartingDeadlineSeconds = ptr.To(t.Deployment.TimeLimit)
	}
	return cj, nil
}

func (a *Assembler) claims(t *spec.Table) []*corev1.PersistentVolumeClaim {
	var out []*corev1.PersistentVolumeClaim
	for _, claim := range grammar.Stores(t.Storage, t.Namespace) {
		claim.TypeMeta = a.typeMeta(apiversion.PersistentVolumeClaim, "PersistentVolumeClaim")
		claim.Labels = map[string]string{"name": claim.Name, "namespace": t.Namespace}
		out = append(out, &claim)
	}
	return out
}
