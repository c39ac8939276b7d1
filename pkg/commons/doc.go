// Package commons implements the client for the Wikimedia Commons MediaWiki
// API and file-content endpoints.
//
// Two operations are exposed: ListCategoryMembers enumerates the files or
// subcategories of a category, following cmcontinue pagination tokens until
// the listing is exhausted, and DownloadFile fetches the binary content of a
// file page via the Special:FilePath redirect.
//
// Metadata calls are paced (0.2s apart) and retried on a 1,2,4,8,16 second
// backoff schedule. File fetches are paced one second apart and retried with
// a longer schedule when the server answers 429. Enumeration fails soft:
// exhausting the retry budget returns the members collected so far along
// with a completeness flag instead of an error.
package commons
