package question

import (
	"context"
	"errors"
)

// Lookup returns the client view of a stored question.
func Lookup(ctx context.Context, store QuestionStore, rawID string) (ClientQuestion, error) {
	const op = "lookup"

	id, err := ParseID(rawID)
	if err != nil {
		return ClientQuestion{}, err
	}
	q, err := store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			return ClientQuestion{}, notFound(op, "question not found", err)
		}
		return ClientQuestion{}, storage(op, "failed to load question", err)
	}
	return q.ClientView(), nil
}

// Random returns the client view of a random stored question.
func Random(ctx context.Context, store QuestionStore) (ClientQuestion, error) {
	const op = "random"

	q, err := store.Random(ctx)
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			return ClientQuestion{}, notFound(op, "no questions yet", err)
		}
		return ClientQuestion{}, storage(op, "failed to load question", err)
	}
	return q.ClientView(), nil
}
