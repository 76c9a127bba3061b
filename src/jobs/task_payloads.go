package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeInvalidateAdvice = "advice:invalidate"

type InvalidateAdvicePayload struct {
	StudentIDs []string `json:"studentIds"`
}

func NewInvalidateAdviceTask(studentIDs []string) (*asynq.Task, error) {
	payload, err := json.Marshal(InvalidateAdvicePayload{StudentIDs: studentIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInvalidateAdvice, payload, asynq.MaxRetry(3)), nil
}
