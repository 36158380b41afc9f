package evaluation

import "errors"

// ErrNoRanking is returned when no model family produced feature importances.
var ErrNoRanking = errors.New("no model family exposes feature importances")
