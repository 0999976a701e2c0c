package session

// ProviderCallFailedError reports that the completion provider could not produce a reply.
// Network failures, provider-side errors, bad credentials and rate limiting all surface
// as this one kind; Error returns the provider's message unchanged.
type ProviderCallFailedError struct {
	Err error
}

func (e *ProviderCallFailedError) Error() string {
	if e.Err == nil {
		return "provider call failed"
	}
	return e.Err.Error()
}

func (e *ProviderCallFailedError) Unwrap() error {
	return e.Err
}
