package k8slauncher

import (
	"context"
	"fmt"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/launcher"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// K8sLauncher runs training rounds as Kubernetes jobs instead of local
// processes, for clients that sit next to a cluster rather than on the
// training hardware itself. Each round becomes one job, so relaunching the
// same round fails on the already existing job name.
type K8sLauncher struct {
	config    *rest.Config
	clientset *kubernetes.Clientset
	namespace string
	image     string
	logger    hclog.Logger
}

func NewK8sLauncher(configFilePath string, namespace string, image string, logger hclog.Logger) (*K8sLauncher, error) {
	// connect to Kubernetes cluster
	config, err := clientcmd.BuildConfigFromFlags("", configFilePath)
	if err != nil {
		logger.Error("Error building kubeconfig", "error", err)
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		logger.Error("Error creating clientset", "error", err)
		return nil, err
	}

	return &K8sLauncher{
		config:    config,
		clientset: clientset,
		namespace: namespace,
		image:     image,
		logger:    logger,
	}, nil
}

func (l *K8sLauncher) Launch(action launcher.Action, trainingID uuid.UUID, round int64, modelID uuid.UUID) error {
	job := BuildRunJob(l.image, action, trainingID, round, modelID)

	jobsClient := l.clientset.BatchV1().Jobs(l.namespace)
	if _, err := jobsClient.Create(context.TODO(), job, metav1.CreateOptions{}); err != nil {
		return &launcher.LaunchError{Action: action, Err: err}
	}

	l.logger.Info(fmt.Sprintf("%s run job %s created", action, job.Name))
	return nil
}

// RemoveTrainingRuns deletes every run job of one training, together with
// the pods the jobs left behind. Called when the training is finished.
func (l *K8sLauncher) RemoveTrainingRuns(trainingID uuid.UUID) error {
	jobsClient := l.clientset.BatchV1().Jobs(l.namespace)

	propagation := metav1.DeletePropagationBackground
	err := jobsClient.DeleteCollection(context.TODO(),
		metav1.DeleteOptions{PropagationPolicy: &propagation},
		metav1.ListOptions{LabelSelector: fmt.Sprintf("%s=%s", trainingIDLabel, trainingID)})
	if err != nil {
		return fmt.Errorf("error deleting run jobs: %v", err)
	}

	l.logger.Info(fmt.Sprintf("removed run jobs of training %s", trainingID))
	return nil
}
