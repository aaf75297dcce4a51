package campus

const (
	operationPlaceBet     = "place_bet"
	operationCastVote     = "cast_vote"
	operationRegister     = "register"
	operationAuthenticate = "authenticate"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	betIDPrefix  = "b_"
	voteIDPrefix = "v_"
	userIDPrefix = "u_"
)
