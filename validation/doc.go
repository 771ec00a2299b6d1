// Package validation provides request and config validation.
//
// Struct validation uses go-playground/validator tags and reports fields by
// their json names. The fluent Validator collects field errors for checks
// that tags cannot express, such as audio extensions and upload sizes.
package validation
