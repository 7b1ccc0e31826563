package carryforward

type RunRequest struct {
	FromYear int `json:"from_year" binding:"required,min=2000,max=2200"`
}

type RunResult struct {
	RunID     string   `json:"run_id"`
	FromYear  int      `json:"from_year"`
	ToYear    int      `json:"to_year"`
	Processed int      `json:"processed"`
	Failed    []string `json:"failed"`
}
