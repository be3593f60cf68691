package leadnotify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"harvin-platform/internal/models"
)

const submittedLayout = "2 Jan 2006, 3:04 PM"

type adminView struct {
	models.LeadRequest
	TypeLabel string
	Submitted string
}

type userView struct {
	Name    string
	IsSales bool
	Year    int
	Steps   []nextStep
}

type nextStep struct {
	Number      int
	Title       string
	Description string
}

var nextSteps = []nextStep{
	{1, "You're on the list", "We've saved your details. You're among our earliest supporters and we won't forget that."},
	{2, "We're building for you", "HarvinAI is actively under development. We're focused on getting the product right before we open access."},
	{3, "You hear from us first", "When we're ready to onboard, you'll get a personal invite. No queue, no waiting."},
}

var templateFuncs = template.FuncMap{
	"row": func(label, value string) map[string]string {
		return map[string]string{"Label": label, "Value": value}
	},
	"pills": func() []string {
		return []string{"500K+ D2C brands", "Real-time signals", "Intent scoring"}
	},
}

func typeLabel(req models.LeadRequest) string {
	if req.IsSales() {
		return "💼 Talk to Sales"
	}
	return "🚀 Early Access"
}

func adminSubject(req models.LeadRequest) string {
	if req.IsSales() {
		return fmt.Sprintf("💼 New sales request — %s from %s", req.Name, req.Company)
	}
	return fmt.Sprintf("🚀 New early access request — %s from %s", req.Name, req.Company)
}

func userSubject(req models.LeadRequest) string {
	if req.IsSales() {
		return fmt.Sprintf("We received your message, %s!", req.Name)
	}
	return fmt.Sprintf("You're on the HarvinAI waitlist, %s!", req.Name)
}

func renderAdmin(req models.LeadRequest, submitted time.Time) (string, error) {
	return render(adminTemplate, adminView{
		LeadRequest: req,
		TypeLabel:   typeLabel(req),
		Submitted:   submitted.Format(submittedLayout) + " IST",
	})
}

func renderUser(req models.LeadRequest, now time.Time) (string, error) {
	return render(userTemplate, userView{
		Name:    req.Name,
		IsSales: req.IsSales(),
		Year:    now.Year(),
		Steps:   nextSteps,
	})
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

var adminTemplate = template.Must(template.New("admin").Funcs(templateFuncs).Parse(`<!DOCTYPE html><html><head><meta charset="UTF-8"/></head>
<body style="margin:0;padding:0;background:#f4f4f5;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',sans-serif;">
<table width="100%" cellpadding="0" cellspacing="0" style="padding:40px 20px;">
<tr><td align="center">
<table width="560" cellpadding="0" cellspacing="0" style="background:#fff;border-radius:16px;overflow:hidden;border:1px solid #e4e4e7;">
  <tr><td style="background:#C94C1E;padding:28px 36px;">
    <p style="margin:0;font-size:12px;font-weight:600;letter-spacing:0.08em;text-transform:uppercase;color:rgba(255,255,255,0.7);">HarvinAI · Admin Notification</p>
    <h1 style="margin:8px 0 0;font-size:22px;font-weight:700;color:#fff;">New {{.TypeLabel}} Request</h1>
  </td></tr>
  <tr><td style="padding:32px 36px;">
    <table width="100%" cellpadding="0" cellspacing="0">
      {{template "row" (row "Name" .Name)}}
      <tr>
        <td style="padding:10px 0;vertical-align:top;width:110px;"><p style="margin:0;font-size:11px;font-weight:600;text-transform:uppercase;letter-spacing:0.06em;color:#a1a1aa;">Email</p></td>
        <td style="padding:10px 0 10px 16px;vertical-align:top;"><p style="margin:0;font-size:14px;color:#18181b;"><a href="mailto:{{.Email}}" style="color:#C94C1E;">{{.Email}}</a></p></td>
      </tr>
      {{template "row" (row "Company" .Company)}}
      {{template "row" (row "Role" .Role)}}
      {{template "row" (row "Type" .TypeLabel)}}
      {{if .Message}}{{template "row" (row "Message" .Message)}}{{end}}
      {{template "row" (row "Submitted" .Submitted)}}
    </table>
    <div style="margin-top:28px;padding:16px 20px;background:#fef3ee;border-radius:10px;border:1px solid #fcd9c8;">
      <p style="margin:0;font-size:13px;color:#7c2d12;font-weight:600;">Action required</p>
      <p style="margin:6px 0 0;font-size:13px;color:#9a3412;">
        Reply to {{.Name}} at <a href="mailto:{{.Email}}" style="color:#C94C1E;">{{.Email}}</a> within 24 hours.
      </p>
    </div>
  </td></tr>
  <tr><td style="padding:20px 36px;border-top:1px solid #f4f4f5;">
    <p style="margin:0;font-size:12px;color:#a1a1aa;">Automated notification from HarvinAI.</p>
  </td></tr>
</table>
</td></tr>
</table>
</body></html>
{{define "row"}}<tr>
        <td style="padding:10px 0;vertical-align:top;width:110px;"><p style="margin:0;font-size:11px;font-weight:600;text-transform:uppercase;letter-spacing:0.06em;color:#a1a1aa;">{{.Label}}</p></td>
        <td style="padding:10px 0 10px 16px;vertical-align:top;"><p style="margin:0;font-size:14px;color:#18181b;">{{.Value}}</p></td>
      </tr>{{end}}`))

var userTemplate = template.Must(template.New("user").Funcs(templateFuncs).Parse(`<!DOCTYPE html><html><head><meta charset="UTF-8"/></head>
<body style="margin:0;padding:0;background:#f4f4f5;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',sans-serif;">
<table width="100%" cellpadding="0" cellspacing="0" style="padding:40px 20px;">
<tr><td align="center">
<table width="560" cellpadding="0" cellspacing="0" style="background:#fff;border-radius:16px;overflow:hidden;border:1px solid #e4e4e7;">
  <tr><td style="background:#0c0b09;padding:28px 36px;text-align:center;">
    <p style="margin:0;font-size:24px;font-weight:700;color:#fff;letter-spacing:-0.02em;">Harvin<span style="opacity:0.4;font-weight:400;">AI</span></p>
  </td></tr>
  <tr><td style="padding:40px 36px 28px;text-align:center;">
    <p style="font-size:36px;margin:0 0 16px;">🎉</p>
    <h1 style="margin:0 0 12px;font-size:24px;font-weight:700;color:#09090b;letter-spacing:-0.02em;">
      {{if .IsSales}}We'll be in touch soon!{{else}}You're on the waitlist!{{end}}
    </h1>
    <p style="margin:0 auto;font-size:15px;color:#52525b;line-height:1.7;max-width:420px;">
      Hi {{.Name}}, thank you for your interest in HarvinAI.
      {{if .IsSales}}Our team has received your message and will reach out within 24 hours.{{else}}You're among our earliest supporters. We'll personally reach out when we're ready to onboard new users.{{end}}
    </p>
  </td></tr>
  <tr><td style="padding:0 36px;"><div style="height:1px;background:#f4f4f5;"></div></td></tr>
  <tr><td style="padding:28px 36px;">
    <h2 style="margin:0 0 10px;font-size:15px;font-weight:700;color:#09090b;">What is HarvinAI?</h2>
    <p style="margin:0;font-size:14px;color:#52525b;line-height:1.7;">
      HarvinAI is a <strong>D2C brand intelligence platform</strong> that helps B2B sales teams identify which
      D2C brands are in a buying window, before the competition finds out. We track 500,000+ brands
      across funding rounds, store openings, hiring activity, and app launches.
    </p>
    <p style="margin:14px 0 0;">
      {{range $pill := pills}}<span style="display:inline-block;margin:0 6px 6px 0;padding:5px 12px;background:#fef3ee;border:1px solid #fcd9c8;border-radius:999px;font-size:12px;font-weight:600;color:#9a3412;">{{$pill}}</span>
      {{end}}
    </p>
  </td></tr>
  <tr><td style="padding:0 36px;"><div style="height:1px;background:#f4f4f5;"></div></td></tr>
  <tr><td style="padding:28px 36px;">
    <h2 style="margin:0 0 18px;font-size:15px;font-weight:700;color:#09090b;">What happens next?</h2>
    {{range .Steps}}<table cellpadding="0" cellspacing="0" style="margin-bottom:14px;width:100%;">
    <tr>
      <td style="width:28px;vertical-align:top;padding-top:1px;">
        <div style="width:22px;height:22px;background:#C94C1E;border-radius:50%;text-align:center;line-height:22px;font-size:11px;font-weight:700;color:#fff;">{{.Number}}</div>
      </td>
      <td style="padding-left:12px;vertical-align:top;">
        <p style="margin:0 0 2px;font-size:14px;font-weight:600;color:#09090b;">{{.Title}}</p>
        <p style="margin:0;font-size:13px;color:#71717a;line-height:1.6;">{{.Description}}</p>
      </td>
    </tr>
    </table>
    {{end}}
  </td></tr>
  <tr><td style="padding:0 36px 32px;">
    <div style="background:#fef3ee;border-radius:12px;padding:18px 22px;border:1px solid #fcd9c8;">
      <p style="margin:0;font-size:13px;color:#7c2d12;line-height:1.6;">
        <strong>Questions in the meantime?</strong><br/>
        Just reply to this email. We read every single message.
      </p>
    </div>
  </td></tr>
  <tr><td style="padding:20px 36px;border-top:1px solid #f4f4f5;text-align:center;">
    <p style="margin:0 0 4px;font-size:12px;color:#a1a1aa;">© {{.Year}} HarvinAI, Inc. · All rights reserved.</p>
    <p style="margin:0;font-size:12px;color:#a1a1aa;">You're receiving this because you signed up at harvinai.com</p>
  </td></tr>
</table>
</td></tr>
</table>
</body></html>`))
