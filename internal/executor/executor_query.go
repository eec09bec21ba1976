package executor

import "github.com/flowdeck/replaycore/internal/payload"

// answerQueries implements spec §4.8: each query the poll request carried is
// answered against the program state exactly as it stands after this task's
// event loop has run to completion, never mid-batch.
func (e *Executor) answerQueries(queries []Query) map[string]QueryResult {
	if len(queries) == 0 {
		return nil
	}

	results := make(map[string]QueryResult, len(queries))
	for _, q := range queries {
		results[q.Name] = e.runQuery(q)
	}
	return results
}

// runQuery invokes the program's query handler, recovering a panic the same
// way a broken activity is recovered: a bad query handler must never corrupt
// the command stream or abort the run.
func (e *Executor) runQuery(q Query) QueryResult {
	result, err := e.queryProgram(q)
	if err != nil {
		e.logger.Warn("query handler failed", "query", q.Name, "error", err)
		return QueryResult{
			Name:         q.Name,
			Status:       QueryResultFailed,
			ErrorMessage: err.Error(),
		}
	}

	return QueryResult{
		Name:   q.Name,
		Status: QueryResultAnswered,
		Result: result,
	}
}

func (e *Executor) queryProgram(q Query) (result payload.Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = e.program.MapUnexpectedPanic(r)
		}
	}()

	return e.program.Query(q)
}
