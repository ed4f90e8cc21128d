package jobs

import (
	"context"
	"fmt"
)

// UserNotifier enqueues a welcome mail when an account is created.
type UserNotifier struct {
	Client *Client
}

// NotifyUserCreated queues the welcome mail for the new account.
func (n *UserNotifier) NotifyUserCreated(ctx context.Context, email, fullName string) error {
	if n == nil || n.Client == nil {
		return nil
	}
	payload := SendEmailPayload{
		To:      email,
		Subject: "Welcome to Atlas HRMS",
		Body:    fmt.Sprintf("Hi %s,\n\nYour Atlas HRMS account is ready. Sign in with this email address to get started.\n", fullName),
		Kind:    "welcome",
	}
	_, err := n.Client.EnqueueSendEmail(ctx, payload)
	return err
}
