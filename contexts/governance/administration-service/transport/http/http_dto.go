package httptransport

type ProposeAdministratorRequest struct {
	Proposed string `json:"proposed"`
}

type ProposeAdministratorResponse struct {
	Administrator string `json:"administrator"`
	Proposed      string `json:"proposed"`
}

type AcceptAdministratorResponse struct {
	Administrator string `json:"administrator"`
}

type SetPauseRequest struct {
	Paused bool `json:"paused"`
}

type SetPauseResponse struct {
	Paused bool `json:"paused"`
}

type AdministrationDTO struct {
	Administrator         string `json:"administrator"`
	ProposedAdministrator string `json:"proposed_administrator,omitempty"`
	Paused                bool   `json:"paused"`
}

type GetAdministrationResponse struct {
	Item AdministrationDTO `json:"item"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
