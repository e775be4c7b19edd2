// Package handlers implements the business logic behind the puppetctl
// commands.
//
// Each handler loads the configuration, builds a provisioning context from
// the factory variables below and runs one provisioning flow. Handlers
// return errors; ReportError is the single place that renders them for the
// operator.
package handlers
