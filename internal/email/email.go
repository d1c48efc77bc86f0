package email

import (
	"fmt"
	"log/slog"
	"strings"

	resend "github.com/resend/resend-go/v2"

	"github.com/mentorlink/feedback-service/internal/models"
)

// EmailClient is an interface for sending notification emails. All sends are
// best-effort: failures are logged, never returned to the caller.
type EmailClient interface {
	SendAsync(toEmail, subject, htmlBody string)
	SendFeedbackReceivedEmail(mentee *models.User, mentorName, eventName string)
	SendAssignmentNotificationEmail(user *models.User, role, eventName string)
	SendAssignmentInvitationEmail(toEmail, invitedAs, eventName string)
}

const feedbackReceivedTemplate = `<html><body>
<p>Hi {name},</p>
<p>{mentor_name} has submitted feedback for you in <strong>{event_name}</strong>.</p>
<p>Sign in to read it.</p>
</body></html>`

const assignmentNotificationTemplate = `<html><body>
<p>Hi {name},</p>
<p>You have been assigned as a {role} in <strong>{event_name}</strong>.</p>
<p>Sign in to see your pairing.</p>
</body></html>`

const assignmentInvitationTemplate = `<html><body>
<p>Hello,</p>
<p>You have been invited to join <strong>{event_name}</strong> as a {role}.</p>
<p>Create an account with this email address to take part.</p>
</body></html>`

// ResendEmailClient implements EmailClient using the Resend service
type ResendEmailClient struct {
	client        *resend.Client
	defaultSender string
	logger        *slog.Logger
}

// NewResendEmailClient creates a new ResendEmailClient
func NewResendEmailClient(client *resend.Client, defaultSender string, logger *slog.Logger) *ResendEmailClient {
	return &ResendEmailClient{
		client:        client,
		defaultSender: defaultSender,
		logger:        logger,
	}
}

// SendAsync sends an email without blocking the caller
func (c *ResendEmailClient) SendAsync(toEmail, subject, htmlBody string) {
	if c == nil || c.client == nil {
		return
	}

	if c.defaultSender == "" {
		c.logger.Error("Resend default sender not configured, skipping email")
		return
	}

	go func() {
		params := &resend.SendEmailRequest{
			From:    c.defaultSender,
			To:      []string{toEmail},
			Subject: subject,
			Html:    htmlBody,
		}

		_, err := c.client.Emails.Send(params)
		if err != nil {
			c.logger.Error("Failed to send email",
				"to", toEmail,
				"subject", subject,
				"error", err)
		} else {
			c.logger.Info("Email sent",
				"to", toEmail,
				"subject", subject)
		}
	}()
}

// SendFeedbackReceivedEmail tells a mentee their mentor submitted feedback
func (c *ResendEmailClient) SendFeedbackReceivedEmail(mentee *models.User, mentorName, eventName string) {
	if mentee == nil {
		c.logger.Error("Cannot send feedback-received email to nil user")
		return
	}

	replacer := strings.NewReplacer(
		"{name}", displayName(mentee),
		"{mentor_name}", mentorName,
		"{event_name}", eventName,
	)
	htmlBody := replacer.Replace(feedbackReceivedTemplate)
	subject := fmt.Sprintf("New feedback in %s", eventName)

	c.SendAsync(mentee.Email, subject, htmlBody)
}

// SendAssignmentNotificationEmail tells an existing user about their new pairing
func (c *ResendEmailClient) SendAssignmentNotificationEmail(user *models.User, role, eventName string) {
	if user == nil {
		c.logger.Error("Cannot send assignment email to nil user")
		return
	}

	replacer := strings.NewReplacer(
		"{name}", displayName(user),
		"{role}", role,
		"{event_name}", eventName,
	)
	htmlBody := replacer.Replace(assignmentNotificationTemplate)
	subject := fmt.Sprintf("You have been paired in %s", eventName)

	c.SendAsync(user.Email, subject, htmlBody)
}

// SendAssignmentInvitationEmail invites an email address with no account yet
func (c *ResendEmailClient) SendAssignmentInvitationEmail(toEmail, invitedAs, eventName string) {
	if toEmail == "" {
		c.logger.Error("Cannot send invitation email to empty address")
		return
	}

	replacer := strings.NewReplacer(
		"{role}", invitedAs,
		"{event_name}", eventName,
	)
	htmlBody := replacer.Replace(assignmentInvitationTemplate)
	subject := fmt.Sprintf("Invitation to %s", eventName)

	c.SendAsync(toEmail, subject, htmlBody)
}

func displayName(user *models.User) string {
	if user.Name != nil && *user.Name != "" {
		return *user.Name
	}
	return user.Email
}

// LogEmailClient logs instead of sending. Used in dev and tests where no
// Resend key is configured.
type LogEmailClient struct {
	logger *slog.Logger
}

func NewLogEmailClient(logger *slog.Logger) *LogEmailClient {
	return &LogEmailClient{logger: logger}
}

func (c *LogEmailClient) SendAsync(toEmail, subject, htmlBody string) {
	c.logger.Info("Email suppressed (no sender configured)",
		"to", toEmail,
		"subject", subject)
}

func (c *LogEmailClient) SendFeedbackReceivedEmail(mentee *models.User, mentorName, eventName string) {
	if mentee == nil {
		return
	}
	c.SendAsync(mentee.Email, fmt.Sprintf("New feedback in %s", eventName), "")
}

func (c *LogEmailClient) SendAssignmentNotificationEmail(user *models.User, role, eventName string) {
	if user == nil {
		return
	}
	c.SendAsync(user.Email, fmt.Sprintf("You have been paired in %s", eventName), "")
}

func (c *LogEmailClient) SendAssignmentInvitationEmail(toEmail, invitedAs, eventName string) {
	c.SendAsync(toEmail, fmt.Sprintf("Invitation to %s", eventName), "")
}
