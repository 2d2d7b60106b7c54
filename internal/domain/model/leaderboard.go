package model

type LeaderboardEntry struct {
	Rank              int    `json:"rank"`
	UserID            string `json:"user_id"`
	Username          string `json:"username"`
	AvatarURL         string `json:"avatar_url"`
	GithubURL         string `json:"github_url"`
	ProblemsSolved    int    `json:"problems_solved"`
	EarliestSolvesSum int64  `json:"earliest_solves_sum"`
}
