package domain

// StatusMeta is the canonical presentation metadata for a document status.
// Every consumer (queues, badges, reports) reads from this table instead of
// switching on the raw status string.
type StatusMeta struct {
	Label    string `json:"label"`
	Color    string `json:"color"`
	Terminal bool   `json:"terminal"`
}

var statusMeta = map[DocumentStatus]StatusMeta{
	StatusPendingReview:   {Label: "Pending Review", Color: "blue"},
	StatusInReview:        {Label: "In Review", Color: "indigo"},
	StatusPendingApproval: {Label: "Pending Approval", Color: "amber"},
	StatusApproved:        {Label: "Approved", Color: "green"},
	StatusException:       {Label: "Exception", Color: "red"},
	StatusPosted:          {Label: "Posted", Color: "emerald", Terminal: true},
	StatusRejected:        {Label: "Rejected", Color: "gray", Terminal: true},
}

// MetaForStatus returns the display metadata for a status. Unknown statuses get
// the raw value back as label so nothing renders blank.
func MetaForStatus(s DocumentStatus) StatusMeta {
	if m, ok := statusMeta[s]; ok {
		return m
	}
	return StatusMeta{Label: string(s), Color: "gray"}
}
