package model

type CalculationMessage struct {
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

// Warning codes emitted by the calculators.
const (
	CodeBBGDistributed     = "BBG_DISTRIBUTED"
	CodeTaxClassOverridden = "TAX_CLASS_OVERRIDDEN"
	CodeBelowMinimumWage   = "BELOW_MINIMUM_WAGE"
	CodeMinijobSecondary   = "MINIJOB_SECONDARY"
	CodeMinijob            = "MINIJOB"
	CodeMidijob            = "MIDIJOB"
)

func Warning(code, message string) CalculationMessage {
	return CalculationMessage{Level: LevelWarning, Code: code, Message: message}
}
