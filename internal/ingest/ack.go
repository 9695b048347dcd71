package ingest

// Acknowledgement document returned to every caller of the ingest endpoints,
// regardless of outcome. Three tiers: received, warning, error.

const (
	AckReceived = "received"
	AckWarning  = "warning"
	AckError    = "error"
)

const (
	domainDemand       = "DEMAND"
	domainNotification = "NOTIFICATION"

	severityWarning = "WARNING"
	severityError   = "ERROR"

	codeMissingField = "missing_mandatory_field"
	codeParse        = "parse_error"
	codeStorage      = "storage_error"
	codeForward      = "forward_error"
)

// StatusMessage is one warning or error entry in an acknowledgement.
type StatusMessage struct {
	Domain   string `json:"domain"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

type Acknowledgement struct {
	Status   string          `json:"status"`
	Warnings []StatusMessage `json:"warnings,omitempty"`
	Errors   []StatusMessage `json:"errors,omitempty"`
}

// AckDocument is the wire envelope around an acknowledgement.
type AckDocument struct {
	Acknowledge Acknowledgement `json:"acknowledge"`
}

func ackReceived() AckDocument {
	return AckDocument{Acknowledge: Acknowledgement{Status: AckReceived}}
}

func ackWithWarnings(warnings []StatusMessage) AckDocument {
	return AckDocument{Acknowledge: Acknowledgement{Status: AckWarning, Warnings: warnings}}
}

func ackFailed(code string, err error) AckDocument {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return AckDocument{Acknowledge: Acknowledgement{
		Status: AckError,
		Errors: []StatusMessage{{
			Domain:   domainNotification,
			Severity: severityError,
			Code:     code,
			Detail:   detail,
		}},
	}}
}

func warning(code, detail string) StatusMessage {
	return StatusMessage{
		Domain:   domainDemand,
		Severity: severityWarning,
		Code:     code,
		Detail:   detail,
	}
}
