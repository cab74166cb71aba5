// Package domain defines the business types shared by the customers and
// orders domain services and the experience layer.
//
// Types in this package are pure value objects with no behavior, no storage
// dependencies, and no HTTP concerns. They are the shared language between
// resolvers, the relay client, handlers, and the store adapters.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DynamoDB tags are allowed (they're metadata, not behavior)
//   - Validation methods are allowed (they're pure functions on the type)
//   - Constants, sentinel errors and enums belong here
package domain
