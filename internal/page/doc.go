// Package page certifies that a captured page is genuine before anything is extracted from it.
//
// A page is reduced to its Signature (document title and first heading). The Guard rejects
// signatures without a heading and signatures that carry a bot-challenge or block phrase,
// so a blocked snapshot fails loudly instead of yielding an empty schedule.
package page
