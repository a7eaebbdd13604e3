// Package html extracts news articles from HTML pages.
// When the page has an <article> element only its text is kept, which drops
// navigation and footers from typical news sites.
package html
