package common

// Notification types pushed by the FL server
const NOTIFICATION_TRAINING_START = "TRAINING_START"
const NOTIFICATION_UPDATE_ROUND_START = "UPDATE_ROUND_START"
const NOTIFICATION_MODEL_TEST_ROUND = "MODEL_TEST_ROUND"
const NOTIFICATION_TRAINING_FINISHED = "TRAINING_FINISHED"

// FL server endpoints, relative to the configured base URL
const MODEL_ENDPOINT_TEMPLATE = "/api/models/%s/"
const METRICS_ENDPOINT_TEMPLATE = "/api/models/%s/metrics/"

// Field names of the model upload and metric upload requests
const UPLOAD_FIELD_OWNER = "owner"
const UPLOAD_FIELD_ROUND = "round"
const UPLOAD_FIELD_SAMPLE_SIZE = "sample_size"
const UPLOAD_FIELD_METRIC_NAMES = "metric_names"
const UPLOAD_FIELD_METRIC_VALUES = "metric_values"
const UPLOAD_FIELD_MODEL_FILE = "model_file"

// Run job configs
const RUN_JOB_PREFIX = "fl-run"
const RUN_CONTAINER_NAME = "fl-run"

// Events
const TRAINING_LIFECYCLE_EVENT_TYPE = "TrainingLifecycle"
const RUN_STATE_CHANGE_EVENT_TYPE = "RunStateChanged"

// Training lifecycle phases
const TRAINING_PHASE_INIT = "INIT"
const TRAINING_PHASE_END = "END"
