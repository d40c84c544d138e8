// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// DecisionEmailData holds data for application decision email templates.
type DecisionEmailData struct {
	SiteName        string
	ApplicantName   string
	InstitutionName string
	Reason          string // rejection reason, empty otherwise
	DashboardURL    string
}

// BuildApprovalEmail creates the notice sent when an application is approved.
func BuildApprovalEmail(data DecisionEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Your %s application has been approved", data.SiteName),
		TextBody: buildApprovalText(data),
		HTMLBody: buildDecisionHTML("approved", approvedLead, data),
	}
}

// BuildRejectionEmail creates the notice sent when an application is rejected.
func BuildRejectionEmail(data DecisionEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Update on your %s application", data.SiteName),
		TextBody: buildRejectionText(data),
		HTMLBody: buildDecisionHTML("rejected", rejectedLead, data),
	}
}

// BuildReopenEmail creates the notice sent when an admin sends an
// application back for more information.
func BuildReopenEmail(data DecisionEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Your %s application needs attention", data.SiteName),
		TextBody: buildReopenText(data),
		HTMLBody: buildDecisionHTML("reopened", reopenedLead, data),
	}
}

func buildApprovalText(data DecisionEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", data.ApplicantName)
	fmt.Fprintf(&buf, "Good news: your application for %s has been approved.\n\n", data.InstitutionName)
	fmt.Fprintf(&buf, "Your institution is now live on %s. Sign in to finish setting up:\n%s\n", data.SiteName, data.DashboardURL)
	return buf.String()
}

func buildRejectionText(data DecisionEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", data.ApplicantName)
	fmt.Fprintf(&buf, "We reviewed your application for %s and were unable to approve it.\n\n", data.InstitutionName)
	if data.Reason != "" {
		fmt.Fprintf(&buf, "Reason: %s\n\n", data.Reason)
	}
	fmt.Fprintf(&buf, "You can update your application and resubmit at any time:\n%s\n", data.DashboardURL)
	return buf.String()
}

func buildReopenText(data DecisionEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n", data.ApplicantName)
	fmt.Fprintf(&buf, "Your application for %s has been sent back for more information.\n\n", data.InstitutionName)
	fmt.Fprintf(&buf, "Please review and resubmit:\n%s\n", data.DashboardURL)
	return buf.String()
}

const (
	approvedLead = "Good news: your application has been approved and your institution is now live."
	rejectedLead = "We reviewed your application and were unable to approve it."
	reopenedLead = "Your application has been sent back for more information."
)

func buildDecisionHTML(name, lead string, data DecisionEmailData) string {
	tmpl := template.Must(template.New(name).Parse(decisionHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, struct {
		DecisionEmailData
		Lead string
	}{data, lead})
	return buf.String()
}

const decisionHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Application Update</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <!-- Header -->
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>

          <!-- Content -->
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hi {{.ApplicantName}},
              </p>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                {{.Lead}}
              </p>

              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 16px 24px; margin-bottom: 24px;">
                <span style="font-size: 18px; font-weight: 600; color: #1f2937;">{{.InstitutionName}}</span>
              </div>

              {{if .Reason}}
              <p style="margin: 0 0 24px; font-size: 14px; color: #6b7280;">
                Reason: {{.Reason}}
              </p>
              {{end}}

              <!-- Button -->
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.DashboardURL}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">
                      Open Dashboard
                    </a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>

          <!-- Footer -->
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                You are receiving this email because you applied for an institution on {{.SiteName}}.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
