package models

type AnalyzeResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

type AnalysisListResponse struct {
	Success  bool              `json:"success"`
	Analyses []AnalysisSummary `json:"analyses"`
}

type AnalysisResponse struct {
	Success  bool      `json:"success"`
	Analysis *Analysis `json:"analysis"`
}

type StatsResponse struct {
	Success bool           `json:"success"`
	Stats   *AnalysisStats `json:"stats"`
}

type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type UserResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}
