package ecr

// Messages holds the human-readable diagnostic templates
type Messages struct {
	InitFailure              string `mapstructure:"init_failure"`
	IncorrectSettings        string `mapstructure:"incorrect_settings"`
	ErrorCode                string `mapstructure:"error_code"` // %d code, %s description
	IncorrectProductName     string `mapstructure:"incorrect_product_name"`
	IncorrectProductPrice    string `mapstructure:"incorrect_product_price"`
	IncorrectProductQuantity string `mapstructure:"incorrect_product_quantity"`
	PaymentIncorrect         string `mapstructure:"payment_incorrect"`
	TypeCloseIncorrect       string `mapstructure:"type_close_incorrect"`
	IncorrectCashAmount      string `mapstructure:"incorrect_cash_amount"`
	UnsupportedOperation     string `mapstructure:"unsupported_operation"` // %s task type
	UnsupportedReport        string `mapstructure:"unsupported_report"`    // %s report type
}

// DefaultMessages returns the English message set
func DefaultMessages() Messages {
	return Messages{
		InitFailure:              "Equipment initialization failure",
		IncorrectSettings:        "incorrect settings",
		ErrorCode:                "Error code %d: %s",
		IncorrectProductName:     "Incorrect product name",
		IncorrectProductPrice:    "Incorrect product price",
		IncorrectProductQuantity: "Incorrect product quantity",
		PaymentIncorrect:         "Incorrect payment sum",
		TypeCloseIncorrect:       "Incorrect payment type",
		IncorrectCashAmount:      "Incorrect cash amount",
		UnsupportedOperation:     "The operation type %s isn't supported",
		UnsupportedReport:        "The report type %s isn't supported",
	}
}

// withDefaults fills empty templates from DefaultMessages
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.InitFailure, d.InitFailure)
	fill(&m.IncorrectSettings, d.IncorrectSettings)
	fill(&m.ErrorCode, d.ErrorCode)
	fill(&m.IncorrectProductName, d.IncorrectProductName)
	fill(&m.IncorrectProductPrice, d.IncorrectProductPrice)
	fill(&m.IncorrectProductQuantity, d.IncorrectProductQuantity)
	fill(&m.PaymentIncorrect, d.PaymentIncorrect)
	fill(&m.TypeCloseIncorrect, d.TypeCloseIncorrect)
	fill(&m.IncorrectCashAmount, d.IncorrectCashAmount)
	fill(&m.UnsupportedOperation, d.UnsupportedOperation)
	fill(&m.UnsupportedReport, d.UnsupportedReport)
	return m
}
