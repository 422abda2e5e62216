package k8slauncher

import (
	"fmt"
	"strings"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/common"
	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher"
	"github.com/google/uuid"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const trainingIDLabel = "fl.training-id"

// RunJobName derives the job name from the run's identity. The name must be
// a DNS label, so only the first segment of the training id is used.
func RunJobName(action launcher.Action, trainingID uuid.UUID, round int64) string {
	shortID := strings.SplitN(trainingID.String(), "-", 2)[0]
	return fmt.Sprintf("%s-%s-%s-r%d", common.RUN_JOB_PREFIX, shortID, action, round)
}

func BuildRunJob(image string, action launcher.Action, trainingID uuid.UUID, round int64, modelID uuid.UUID) *batchv1.Job {
	jobName := RunJobName(action, trainingID, round)
	backoffLimit := int32(0)

	job := &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name: jobName,
			Labels: map[string]string{
				"fl":            "run",
				trainingIDLabel: trainingID.String(),
			},
		},
		Spec: batchv1.JobSpec{
			// the run either succeeds or the round is lost, the FL server
			// decides what to do with a missing update
			BackoffLimit: &backoffLimit,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{
						"fl":            "run",
						trainingIDLabel: trainingID.String(),
					},
				},
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyNever,
					Containers: []corev1.Container{
						{
							Name:  common.RUN_CONTAINER_NAME,
							Image: image,
							Args:  launcher.RunArgs(action, trainingID, round, modelID),
							Resources: corev1.ResourceRequirements{
								Requests: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("1.0"),
									corev1.ResourceMemory: resource.MustParse("1500Mi"),
								},
								Limits: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("2.0"),
									corev1.ResourceMemory: resource.MustParse("2000Mi"),
								},
							},
						},
					},
				},
			},
		},
	}

	return job
}
