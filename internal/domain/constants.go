package domain

// Provider catalog ids.
const (
	ProviderPollfish     = "pollfish"
	ProviderDynata       = "dynata"
	ProviderLucid        = "lucid"
	ProviderSurveyMonkey = "surveymonkey"
)

// CompletedSurvey statuses.
const (
	SurveyStatusCompleted = "Completed"
	SurveyStatusPending   = "Pending"
	SurveyStatusRejected  = "Rejected"
	SurveyStatusDisputed  = "Disputed"
)

// UserTransaction types.
const (
	TxTypeEarning    = "Earning"
	TxTypeWithdrawal = "Withdrawal"
	TxTypeBonus      = "Bonus"
	TxTypePenalty    = "Penalty"
)

// UserTransaction statuses.
const (
	TxStatusPending   = "Pending"
	TxStatusCompleted = "Completed"
	TxStatusFailed    = "Failed"
	TxStatusCancelled = "Cancelled"
)

// Webhook event types.
const (
	EventSurveyCompleted = "survey_completed"
)

// Notification types.
const (
	NotifTypeNewSurveys     = "NEW_SURVEYS"
	NotifTypeEarningsUpdate = "EARNINGS_UPDATE"
	NotifTypeWithdrawal     = "WITHDRAWAL"
)
