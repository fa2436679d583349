package platform

// NewWorkday drives Workday hosted application forms, which expose stable
// data-automation-id attributes instead of ids.
func NewWorkday(rt *Runtime, policy SubmitPolicy) Adapter {
	return &browserAdapter{
		name:   "workday",
		rt:     rt,
		policy: policy,
		hosts:  []string{"myworkday.com", "myworkdayjobs.com"},
		fields: map[string]string{
			"first_name": "input[data-automation-id='legalNameSection_firstName']",
			"last_name":  "input[data-automation-id='legalNameSection_lastName']",
			"email":      "input[data-automation-id='email']",
			"phone":      "input[data-automation-id='phone-number']",
			"address":    "input[data-automation-id='addressSection_addressLine1']",
		},
		fileFields: map[string]string{
			"resume_path": "input[data-automation-id='file-upload-input-ref']",
		},
		submitSelector: "button[data-automation-id='bottom-navigation-next-button']",
	}
}
