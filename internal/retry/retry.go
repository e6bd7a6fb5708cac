package retry

import (
	"context"
)

// Result итог серии попыток
type Result[T any] struct {
	Value    T     // последний полученный кандидат, даже если он не прошёл проверку
	Attempts int   // сколько раз вызывался produce
	Success  bool  // validate вернул true
	Err      error // ошибка последнего вызова produce или отмена контекста
}

// Do вызывает produce, затем validate, и повторяет не более maxRetries раз сверх первой попытки.
// Задержки между попытками нет. Не бросает ошибку при исчерпании попыток: вызывающий сам
// решает, годится ли последний кандидат.
func Do[T any](ctx context.Context, maxRetries int, produce func(ctx context.Context) (T, error), validate func(ctx context.Context, v T) bool) Result[T] {
	var res Result[T]
	for attempt := 0; attempt <= max(0, maxRetries); attempt++ {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}

		res.Attempts++
		v, err := produce(ctx)
		if err != nil {
			res.Err = err
			continue
		}
		res.Value, res.Err = v, nil
		if validate(ctx, v) {
			res.Success = true
			return res
		}
	}
	return res
}
