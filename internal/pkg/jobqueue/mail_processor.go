package jobqueue

import (
	"fmt"

	"github.com/ManuelReschke/KeyFox/internal/pkg/mail"
)

// processLicenseKeyMailJob delivers the welcome mail carrying a freshly
// provisioned license key.
func (q *Queue) processLicenseKeyMailJob(job *Job) error {
	payload, err := LicenseKeyMailPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid license key mail payload: %w", err)
	}
	if payload.Email == "" || payload.APIKey == "" {
		return fmt.Errorf("license key mail payload missing email or key")
	}
	return mail.SendLicenseKeyMail(payload.Email, payload.Name, payload.APIKey, payload.Plan)
}

// EnqueueLicenseKeyMail queues the one-time key delivery mail after a
// successful provisioning flow.
func (q *Queue) EnqueueLicenseKeyMail(payload LicenseKeyMailPayload) (*Job, error) {
	return q.EnqueueJob(JobTypeLicenseKeyMail, payload.ToMap())
}
