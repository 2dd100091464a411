// Package mocks provides centralized mock implementations for testing.
//
// Each mock exposes one function field per interface method plus default
// return values used when the function field is nil, so a test only spells
// out the behavior it cares about:
//
//	tasks := &mocks.MockTaskService{
//	    ListFn: func(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error) {
//	        return nil, errors.New("boom")
//	    },
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Assert the interface is satisfied with a blank variable declaration
package mocks
