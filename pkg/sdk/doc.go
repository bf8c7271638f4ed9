// Package surveyd runs the pet-preference survey pipeline in process,
// without the HTTP service in front of it.
//
// A submission is validated, classified into cat/dog and fur/tail
// preferences, described by a text generation backend, stored, and
// finally annotated with mean, median and standard deviation of its
// answer values.
//
//	client, _ := surveyd.New(ctx,
//	    surveyd.WithSQLite("data/surveys.db"),
//	    surveyd.WithGenerator(myGenerator),
//	)
//	defer client.Close()
//
//	res, err := client.Process(ctx, surveyd.Survey{
//	    UserID:  "alice",
//	    Answers: []surveyd.Answer{{Question: 1, Value: 7}, ...},
//	})
//	var se *surveyd.StageError
//	if errors.As(err, &se) && se.Stage == surveyd.StageDescribe {
//	    // generation backend failed, nothing was stored
//	}
//
// Records default to process memory; WithSQLite and WithMongo select a
// durable store.
package surveyd
