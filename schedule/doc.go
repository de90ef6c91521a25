// Package schedule holds the pluggable algorithms of the flashcard engine:
// a Policy deciding when a fact is due and how an outcome moves it, and a
// Selector choosing which fact to present next.
//
//	p, err := schedule.NewPolicy(schedule.Config{Policy: schedule.PolicyLeitner})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s := p.ApplyOutcome(p.Initial(), time.Now(), true)
package schedule
