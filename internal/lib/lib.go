// Package lib groups integrations that sit outside the request layers:
// background jobs (asynq), transactional email (Resend), JWT issuance and
// the CSV roster codec.
package lib
