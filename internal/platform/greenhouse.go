package platform

// NewGreenhouse drives the standard Greenhouse hosted application form.
func NewGreenhouse(rt *Runtime, policy SubmitPolicy) Adapter {
	return &browserAdapter{
		name:   "greenhouse",
		rt:     rt,
		policy: policy,
		hosts:  []string{"greenhouse.io", "boards.greenhouse.io"},
		fields: map[string]string{
			"first_name":   "#first_name",
			"last_name":    "#last_name",
			"email":        "#email",
			"phone":        "#phone",
			"linkedin":     "input[autocomplete='custom-question-linkedin-profile']",
			"cover_letter": "#cover_letter_text",
		},
		fileFields: map[string]string{
			"resume_path": "#resume input[type='file']",
		},
		submitSelector: "#submit_app",
	}
}
