package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldSessionID   = "session_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldParticipant = "participant_id"
	FieldExpense     = "expense_id"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldRevision    = "ledger_revision"
	FieldTransfers   = "transfer_count"
	FieldModel       = "model"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentSettle  = "settle"
	ComponentSession = "session"
	ComponentAI      = "ai"
	ComponentShare   = "share"
	ComponentCache   = "cache"
)
