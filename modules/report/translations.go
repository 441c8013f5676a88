package report

// Labels are the localized strings used in exported reports.
type Labels struct {
	Title          string
	From           string
	To             string
	TotalTasks     string
	CompletedTasks string
	PendingTasks   string
	TaskDetails    string
	TaskTitle      string
	Description    string
	StartTime      string
	EndTime        string
	Status         string
	Completed      string
	Pending        string
	NotSpecified   string
	Footer         string
}

// Languages supported by report exports.
const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

var labelTable = map[string]Labels{
	LangEnglish: {
		Title:          "Planora Reports",
		From:           "From",
		To:             "To",
		TotalTasks:     "Total Tasks",
		CompletedTasks: "Completed Tasks",
		PendingTasks:   "Pending Tasks",
		TaskDetails:    "Task Details",
		TaskTitle:      "Title",
		Description:    "Description",
		StartTime:      "Start Time",
		EndTime:        "End Time",
		Status:         "Status",
		Completed:      "Completed",
		Pending:        "Pending",
		NotSpecified:   "Not specified",
		Footer:         "© Creativity Code 2025",
	},
	LangArabic: {
		Title:          "تقارير Planora",
		From:           "من",
		To:             "إلى",
		TotalTasks:     "إجمالي المهام",
		CompletedTasks: "المهام المكتملة",
		PendingTasks:   "المهام قيد التنفيذ",
		TaskDetails:    "تفاصيل المهام",
		TaskTitle:      "العنوان",
		Description:    "الوصف",
		StartTime:      "تاريخ البداية",
		EndTime:        "تاريخ النهاية",
		Status:         "الحالة",
		Completed:      "مكتملة",
		Pending:        "قيد التنفيذ",
		NotSpecified:   "غير محدد",
		Footer:         "© Creativity Code 2025",
	},
}

// LabelsFor returns the labels for a language, falling back to English for
// anything unknown.
func LabelsFor(lang string) Labels {
	if labels, ok := labelTable[lang]; ok {
		return labels
	}
	return labelTable[LangEnglish]
}
