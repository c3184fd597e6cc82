// Package session is the working state of one user: the configured field
// template, the rows being edited, the plug-in chain and at most one
// rename task running in the background.
//
// A typical run:
//
//	s, err := session.New(session.Options{Config: cfg})
//	defer s.Close()
//	s.Load("/data/incoming")
//	s.Set("Line", "GMR_57C10_AE_01")
//	h, err := s.Start(ctx, session.StartOptions{})
//	for u := range h.Progress() { ... }
//	res := h.Wait()
//	s.RetryFailed()
package session
