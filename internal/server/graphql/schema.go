// Package graphql exposes the account service behind a single GraphQL
// endpoint: the query surface of the source system, served through
// graph-gophers resolvers.
package graphql

// Schema is the full SDL served at /graphql. badgeNumber rides along with
// the profile fields; the password hash is structurally absent from the
// User type.
const Schema = `
	schema {
		query: Query
		mutation: Mutation
	}

	type Query {
		authenticateUser(email: String!, password: String!): AuthPayload!
		readUser(id: ID!): User!
		verifyToken(token: String!): User!
	}

	type Mutation {
		createUser(input: CreateUserInput!): AuthPayload!
		updateUser(input: UpdateUserInput!): User!
		deleteUser(id: ID!): User!
	}

	type User {
		id: ID!
		email: String!
		firstName: String
		lastName: String
		organization: String
		badgeNumber: Int
	}

	type AuthPayload {
		token: String!
		user: User!
	}

	input CreateUserInput {
		email: String!
		password: String!
		confirmPassword: String!
	}

	input UpdateUserInput {
		id: ID!
		firstName: String
		lastName: String
		organization: String
		badgeNumber: Int
	}
`
