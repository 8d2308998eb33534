package sqlite

// PutRaw exposes putRaw to the external test package.
var PutRaw = (*Store).putRaw
