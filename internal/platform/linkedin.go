package platform

// NewLinkedIn drives the LinkedIn Easy Apply modal. Most of the form is
// prefilled from the member profile, so only the contact fields are mapped.
func NewLinkedIn(rt *Runtime, policy SubmitPolicy) Adapter {
	return &browserAdapter{
		name:   "linkedin",
		rt:     rt,
		policy: policy,
		hosts:  []string{"linkedin.com"},
		fields: map[string]string{
			"email": "input[id*='easyApplyFormElement'][id*='email']",
			"phone": "input[id*='easyApplyFormElement'][id*='phoneNumber']",
		},
		fileFields: map[string]string{
			"resume_path": "input[name='file'][type='file']",
		},
		submitSelector: "button[aria-label='Submit application']",
	}
}
