package rules

import id "lekha/pkg/domain"

// DefaultCatalog is the obligation set the engine ships with. Deployments
// normally point the engine at a maintained catalog file; this built-in set
// keeps local development and tests working without one.
func DefaultCatalog() []ComplianceRule {
	all := []id.EntityType{
		id.EntityProprietorship, id.EntityPartnership, id.EntityLLP,
		id.EntityPrivateLimited, id.EntityPublicLimited, id.EntityOnePersonCompany,
	}
	corporate := []id.EntityType{
		id.EntityPrivateLimited, id.EntityPublicLimited, id.EntityOnePersonCompany,
	}

	return []ComplianceRule{
		{
			ID:           "gst_registration",
			Name:         "GST Registration",
			Description:  "Obtain GST registration after business registration",
			Category:     "gst",
			EntityTypes:  all,
			TriggerEvent: id.EventRegistrationCompleted,
			Frequency:    id.FrequencyOneTime,
			DueDate:      DueDatePolicy{Type: DueDaysAfterEvent, DaysAfter: 30},
			RequiredDocuments: []RequiredDocument{
				{DocumentType: "pan_card", Mandatory: true},
				{DocumentType: "address_proof", Mandatory: true},
				{DocumentType: "bank_statement", Mandatory: false},
			},
			TaskConfig: TaskConfiguration{Priority: id.PriorityHigh, RequiresCAReview: false},
			Active:     true,
		},
		{
			ID:           "gstr1_monthly",
			Name:         "GSTR-1 Filing",
			Description:  "Monthly statement of outward supplies",
			Category:     "gst",
			EntityTypes:  all,
			TriggerEvent: id.EventMonthEnd,
			Frequency:    id.FrequencyMonthly,
			DueDate:      DueDatePolicy{Type: DueFixedDay, DayOfMonth: 11, MonthOffset: 1},
			RequiredDocuments: []RequiredDocument{
				{DocumentType: "sales_register", Mandatory: true},
			},
			TaskConfig: TaskConfiguration{Priority: id.PriorityHigh, RequiresCAReview: false},
			Active:     true,
		},
		{
			ID:           "gstr3b_monthly",
			Name:         "GSTR-3B Filing",
			Description:  "Monthly summary return with tax payment",
			Category:     "gst",
			EntityTypes:  all,
			TriggerEvent: id.EventMonthEnd,
			Frequency:    id.FrequencyMonthly,
			DueDate:      DueDatePolicy{Type: DueFixedDay, DayOfMonth: 20, MonthOffset: 1},
			RequiredDocuments: []RequiredDocument{
				{DocumentType: "sales_register", Mandatory: true},
				{DocumentType: "purchase_register", Mandatory: true},
			},
			Dependencies: []id.RuleID{"gstr1_monthly"},
			TaskConfig:   TaskConfiguration{Priority: id.PriorityCritical, RequiresCAReview: true},
			Active:       true,
		},
		{
			ID:           "tds_deposit_monthly",
			Name:         "TDS Deposit",
			Description:  "Deposit tax deducted at source from salaries",
			Category:     "income_tax",
			EntityTypes:  all,
			TriggerEvent: id.EventPayrollExecuted,
			TriggerConditions: []Condition{
				{Field: "tdsDeducted", Op: OpGreaterOrEqual, Value: 1},
			},
			Frequency: id.FrequencyMonthly,
			DueDate:   DueDatePolicy{Type: DueFixedDay, DayOfMonth: 7, MonthOffset: 1},
			TaskConfig: TaskConfiguration{Priority: id.PriorityHigh, RequiresCAReview: false},
			Active:     true,
		},
		{
			ID:           "pf_remittance_monthly",
			Name:         "PF Remittance",
			Description:  "Monthly provident fund contribution remittance",
			Category:     "payroll",
			EntityTypes:  all,
			TriggerEvent: id.EventPayrollExecuted,
			TriggerConditions: []Condition{
				{Field: "employeeCount", Op: OpGreaterOrEqual, Value: 20},
			},
			Frequency: id.FrequencyMonthly,
			DueDate:   DueDatePolicy{Type: DueFixedDay, DayOfMonth: 15, MonthOffset: 1},
			RequiredDocuments: []RequiredDocument{
				{DocumentType: "salary_register", Mandatory: true},
			},
			TaskConfig: TaskConfiguration{Priority: id.PriorityHigh, RequiresCAReview: false},
			Active:     true,
		},
		{
			ID:           "esi_remittance_monthly",
			Name:         "ESI Remittance",
			Description:  "Monthly employee state insurance contribution",
			Category:     "payroll",
			EntityTypes:  all,
			TriggerEvent: id.EventPayrollExecuted,
			TriggerConditions: []Condition{
				{Field: "employeeCount", Op: OpGreaterOrEqual, Value: 10},
			},
			Frequency: id.FrequencyMonthly,
			DueDate:   DueDatePolicy{Type: DueFixedDay, DayOfMonth: 15, MonthOffset: 1},
			TaskConfig: TaskConfiguration{Priority: id.PriorityMedium, RequiresCAReview: false},
			Active:     true,
		},
		{
			ID:           "tds_return_quarterly",
			Name:         "TDS Return (24Q)",
			Description:  "Quarterly TDS return for salary deductions",
			Category:     "income_tax",
			EntityTypes:  all,
			TriggerEvent: id.EventQuarterEnd,
			Frequency:    id.FrequencyQuarterly,
			DueDate:      DueDatePolicy{Type: DueMonthEnd, MonthOffset: 1},
			Dependencies: []id.RuleID{"tds_deposit_monthly"},
			TaskConfig:   TaskConfiguration{Priority: id.PriorityMedium, RequiresCAReview: true},
			Active:       true,
		},
		{
			ID:           "books_finalization_annual",
			Name:         "Books Finalization",
			Description:  "Close and finalize books of account for the fiscal year",
			Category:     "accounting",
			EntityTypes:  all,
			TriggerEvent: id.EventFiscalYearEnd,
			Frequency:    id.FrequencyAnnual,
			DueDate:      DueDatePolicy{Type: DueDaysAfterEvent, DaysAfter: 60},
			RequiredDocuments: []RequiredDocument{
				{DocumentType: "trial_balance", Mandatory: true},
				{DocumentType: "bank_statement", Mandatory: true},
			},
			TaskConfig: TaskConfiguration{Priority: id.PriorityHigh, RequiresCAReview: true},
			Active:     true,
		},
		{
			ID:           "itr_filing_annual",
			Name:         "Income Tax Return",
			Description:  "Annual income tax return filing",
			Category:     "income_tax",
			EntityTypes:  all,
			TriggerEvent: id.EventFiscalYearEnd,
			Frequency:    id.FrequencyAnnual,
			DueDate:      DueDatePolicy{Type: DueFixedDay, DayOfMonth: 31, MonthOffset: 4},
			Dependencies: []id.RuleID{"books_finalization_annual"},
			TaskConfig:   TaskConfiguration{Priority: id.PriorityCritical, RequiresCAReview: true},
			Active:       true,
		},
		{
			ID:           "mca_annual_return",
			Name:         "MCA Annual Return (MGT-7)",
			Description:  "Annual return filing with the Ministry of Corporate Affairs",
			Category:     "corporate",
			EntityTypes:  corporate,
			TriggerEvent: id.EventFiscalYearEnd,
			Frequency:    id.FrequencyAnnual,
			DueDate:      DueDatePolicy{Type: DueDaysAfterEvent, DaysAfter: 240},
			Dependencies: []id.RuleID{"books_finalization_annual"},
			RequiredDocuments: []RequiredDocument{
				{DocumentType: "financial_statements", Mandatory: true},
				{DocumentType: "board_resolution", Mandatory: true},
			},
			TaskConfig: TaskConfiguration{Priority: id.PriorityHigh, RequiresCAReview: true},
			Active:     true,
		},
	}
}
