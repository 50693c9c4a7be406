// Package registerabonent implements the Register Abonent use case.
//
// Registration validates the email address in the core and records an
// AbonentRegistered event. The event carries no statistics delta, so the
// dispatcher has nothing bound to it and it only flows through reduction.
package registerabonent
