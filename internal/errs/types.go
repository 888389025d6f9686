package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

type EncryptionError struct {
	ErrorMessage
	Err error
}

func (e *EncryptionError) Unwrap() error { return e.Err }

// ConfigError reports a missing or invalid setting. Retrying cannot help.
type ConfigError struct {
	ErrorMessage
	Setting string
}

// Generation failure reasons.
const (
	GenerationUnreachable = "unreachable"
	GenerationMalformed   = "malformed"
	GenerationTimeout     = "timeout"
	GenerationBlocked     = "blocked"
)

// GenerationError is raised when no deck could be produced. The caller's
// current deck is left untouched.
type GenerationError struct {
	ErrorMessage
	Reason    string
	Retryable bool
	Err       error
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Export failure reasons.
const (
	ExportEmptyDeck   = "empty_deck"
	ExportInvalidName = "invalid_name"
	ExportWriteFailed = "write_failed"
)

type ExportError struct {
	ErrorMessage
	Reason string
	Err    error
}

func (e *ExportError) Unwrap() error { return e.Err }

// Rejected reports whether the export was refused because of its input
// rather than failing while writing.
func (e *ExportError) Rejected() bool { return e.Reason != ExportWriteFailed }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewExternalServiceError(service, message string, transient bool, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}

func NewEncryptionError(message string, err error) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}

func NewConfigError(setting, message string) *ConfigError {
	return &ConfigError{
		ErrorMessage: ErrorMessage{Message: message},
		Setting:      setting,
	}
}

func NewGenerationError(reason, message string, err error) *GenerationError {
	return &GenerationError{
		ErrorMessage: ErrorMessage{Message: message},
		Reason:       reason,
		Retryable:    reason != GenerationMalformed && reason != GenerationBlocked,
		Err:          err,
	}
}

func NewExportError(reason, message string, err error) *ExportError {
	return &ExportError{
		ErrorMessage: ErrorMessage{Message: message},
		Reason:       reason,
		Err:          err,
	}
}
