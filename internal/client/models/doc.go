// Package models defines the client-side shapes of backend resources: users,
// posts, comments, notifications and their paginated result pages.
//
// The backend identifies documents either by "id" or by "_id"; every model
// accepts both and exposes a single ID field.
package models
