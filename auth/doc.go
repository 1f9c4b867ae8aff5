/*
Package auth resolves requests to identities.

Sessions

A session is a server-side scs record which holds the id of the signed-in user under the key "uid".
The session token never leaves the server unsigned: clients get a HS256 JSON Web Token whose ID (jti) is the session token,
whose subject is the user id and whose expiry is the session expiry.
The token is set as a cookie and returned by SignIn, so it can be sent as "Authorization: Bearer <token>" as well.

Signing out destroys the server-side record, so the token resolves to the anonymous identity afterwards, even though its signature is still valid.

Resolution

Resolve never fails for missing, malformed, expired or revoked evidence. These are normal and yield core.Anonymous.
It fails with core.ErrIdentityUnavailable only if the session store or the user database can't be reached.
*/
package auth
