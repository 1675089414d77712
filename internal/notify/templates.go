package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template keys. Handlers declare their reporter slots by key; owner-facing
// keys are chosen by the fan-out.
const (
	TmplReporterTakedown        = "reporter_takedown"
	TmplReporterNoAction        = "reporter_no_action"
	TmplReporterAppealTakedown  = "reporter_appeal_takedown"
	TmplReporterAppealApproved  = "reporter_appeal_approved"
	TmplReporterAppealDenied    = "reporter_appeal_denied"
	TmplReporterAlreadyAssessed = "reporter_already_assessed"
	TmplOwnerTakedown           = "owner_takedown"
	TmplOwnerDelayedRejection   = "owner_delayed_rejection"
	TmplOwnerAppealApproved     = "owner_appeal_approved"
	TmplOwnerAppealDenied       = "owner_appeal_denied"
	TmplOwnerOverrideApproved   = "owner_override_approved"
	TmplOperatorHeld            = "operator_held"
)

// Vars feeds template rendering.
type Vars struct {
	TargetName   string
	TargetKind   string
	Action       string
	Policies     []string
	Notes        string
	DelayedUntil string
	CanAppeal    bool
	AppealURL    string
}

type Template struct {
	Subject string
	Body    string
}

var templates = map[string]Template{
	TmplReporterTakedown: {
		Subject: "Your report about {{.TargetName}} has been reviewed",
		Body: "Thank you for your report. We reviewed the {{.TargetKind}} and took action under the following policies:\n" +
			"{{range .Policies}}- {{.}}\n{{end}}" +
			"{{if .CanAppeal}}\nIf you disagree with this outcome you can appeal: {{.AppealURL}}\n{{end}}",
	},
	TmplReporterNoAction: {
		Subject: "Your report about {{.TargetName}} has been reviewed",
		Body: "Thank you for your report. We reviewed the {{.TargetKind}} and concluded that it does not violate our policies.\n" +
			"{{if .CanAppeal}}\nIf you disagree with this outcome you can appeal: {{.AppealURL}}\n{{end}}",
	},
	TmplReporterAppealTakedown: {
		Subject: "The appeal about {{.TargetName}} has been reviewed",
		Body:    "Following an appeal, we re-reviewed the {{.TargetKind}} and confirmed our decision to take action.\n",
	},
	TmplReporterAppealApproved: {
		Subject: "The appeal about {{.TargetName}} has been reviewed",
		Body:    "Following an appeal, we re-reviewed the {{.TargetKind}} and restored it. It no longer stands in violation of our policies.\n",
	},
	TmplReporterAppealDenied: {
		Subject: "The appeal about {{.TargetName}} has been reviewed",
		Body:    "Following an appeal, we re-reviewed the {{.TargetKind}} and confirmed the original decision. It does not violate our policies.\n",
	},
	TmplReporterAlreadyAssessed: {
		Subject: "Your report about {{.TargetName}} has been reviewed",
		Body:    "Thank you for your report. The reported content had already been assessed by our team, so no further action was taken.\n",
	},
	TmplOwnerTakedown: {
		Subject: "Action taken on {{.TargetName}}",
		Body: "Your {{.TargetKind}} was found to violate the following policies and has been actioned ({{.Action}}):\n" +
			"{{range .Policies}}- {{.}}\n{{end}}" +
			"{{if .Notes}}\nReviewer notes: {{.Notes}}\n{{end}}" +
			"{{if .CanAppeal}}\nYou can appeal this decision: {{.AppealURL}}\n{{end}}",
	},
	TmplOwnerDelayedRejection: {
		Subject: "Upcoming removal of {{.TargetName}}",
		Body: "Your {{.TargetKind}} was found to violate our policies. The affected versions will be disabled on {{.DelayedUntil}} unless the issues are resolved before then:\n" +
			"{{range .Policies}}- {{.}}\n{{end}}",
	},
	TmplOwnerAppealApproved: {
		Subject: "Your appeal about {{.TargetName}} was successful",
		Body:    "Following your appeal, we re-reviewed your {{.TargetKind}} and restored it.\n",
	},
	TmplOwnerAppealDenied: {
		Subject: "Your appeal about {{.TargetName}} has been reviewed",
		Body:    "Following your appeal, we re-reviewed your {{.TargetKind}} and confirmed the original decision ({{.Action}}).\n",
	},
	TmplOwnerOverrideApproved: {
		Subject: "Decision about {{.TargetName}} corrected",
		Body:    "A previous moderation decision about your {{.TargetKind}} has been overturned and the content restored. We apologize for the inconvenience.\n",
	},
	TmplOperatorHeld: {
		Subject: "Second-level approval needed for {{.TargetName}}",
		Body:    "A {{.Action}} decision on a sensitive {{.TargetKind}} is being held and needs second-level approval before it executes.\n",
	},
}

// Render fills the named template with vars.
func Render(key string, vars Vars) (subject, body string, err error) {
	tmpl, ok := templates[key]
	if !ok {
		return "", "", fmt.Errorf("unknown notification template %q", key)
	}
	subject, err = render(tmpl.Subject, vars)
	if err != nil {
		return "", "", err
	}
	body, err = render(tmpl.Body, vars)
	return subject, body, err
}

func render(text string, vars Vars) (string, error) {
	t, err := template.New("msg").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
