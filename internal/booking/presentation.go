package booking

type Presentation struct {
	Label string `json:"label" example:"Approved"`
	Color string `json:"color" example:"success"`
}

var presentations = map[Status]Presentation{
	StatusPending:   {Label: "Pending", Color: "warning"},
	StatusApproved:  {Label: "Approved", Color: "success"},
	StatusRejected:  {Label: "Rejected", Color: "danger"},
	StatusCompleted: {Label: "Completed", Color: "info"},
	StatusCancelled: {Label: "Cancelled", Color: "secondary"},
}

func PresentationOf(s Status) Presentation {
	if p, ok := presentations[s]; ok {
		return p
	}
	return Presentation{Label: "Unknown", Color: "secondary"}
}
