package metrickeys

const Prefix = "workflows."

const (
	WorkflowInstanceCreated  = Prefix + "workflow.created"
	WorkflowInstanceFinished = Prefix + "workflow.finished"

	WorkflowTaskScheduled     = Prefix + "workflow.task.scheduled"
	WorkflowTaskProcessed     = Prefix + "workflow.task.processed"
	WorkflowTaskDelay         = Prefix + "workflow.task.time_in_queue"
	WorkflowTaskNoCompletion  = Prefix + "workflow.task.no_completion"
	WorkflowTaskNonDeterminism = Prefix + "workflow.task.non_determinism"

	WorkflowInstanceCacheSize     = Prefix + "workflow.cache.size"
	WorkflowInstanceCacheEviction = Prefix + "workflow.cache.eviction"

	LocalActivityScheduled       = Prefix + "local_activity.scheduled"
	LocalActivityProcessed       = Prefix + "local_activity.processed"
	LocalActivityHeartbeatForced = Prefix + "local_activity.heartbeat_forced"

	HistoryPagesFetched = Prefix + "history.pages_fetched"
)

// Tag names
const (
	EvictionReason = "reason"

	SubWorkflow    = "subworkflow"
	ContinuedAsNew = "continued_as_new"

	ActivityName = "activity"
	EventName    = "event"
)
