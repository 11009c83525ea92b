package mail

import (
	"fmt"
	"html"
	"strings"
)

// VerificationMessage builds the account-verification email. The link embeds
// the raw token and user id; only the token's hash is stored server-side.
func VerificationMessage(to, clientURL, rawToken, userID string) Message {
	link := fmt.Sprintf("%s/verify?token=%s&id=%s", strings.TrimRight(clientURL, "/"), rawToken, userID)
	return Message{
		To:      to,
		Subject: "Verify Your Email - Wardrobe",
		HTML: fmt.Sprintf(
			`<div style="font-family:sans-serif;padding:24px;">`+
				`<h2>Welcome to Wardrobe</h2>`+
				`<p>Thanks for signing up! Please verify your email to activate your account.</p>`+
				`<p><a href="%s">Verify My Email</a></p>`+
				`<p style="color:#888;font-size:13px;">If you didn't create this account, you can safely ignore this email.</p>`+
				`</div>`,
			link),
	}
}

// ResetMessage builds the password-reset email. The link is valid until the
// reset token expires.
func ResetMessage(to, clientURL, rawToken, userID string) Message {
	link := fmt.Sprintf("%s/reset.html?token=%s&id=%s", strings.TrimRight(clientURL, "/"), rawToken, userID)
	return Message{
		To:      to,
		Subject: "Password Reset Request - Wardrobe",
		HTML: fmt.Sprintf(
			`<div style="font-family:sans-serif;padding:24px;">`+
				`<h2>Password Reset Requested</h2>`+
				`<p>Click the link below to reset your password. This link is valid for 1 hour.</p>`+
				`<p><a href="%s">Reset Password</a></p>`+
				`</div>`,
			link),
	}
}

// FeedbackMessage forwards a feedback submission to the site owner.
func FeedbackMessage(to, userName, text string) Message {
	return Message{
		To:      to,
		Subject: "New Feedback Received - Wardrobe",
		HTML: fmt.Sprintf(
			`<div style="font-family:sans-serif;padding:24px;">`+
				`<h3>New feedback from %s</h3>`+
				`<p style="white-space:pre-line;">%s</p>`+
				`</div>`,
			html.EscapeString(userName), html.EscapeString(text)),
	}
}
