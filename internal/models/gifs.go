package models

// CuratedGIFs is the fixed set of GIFs offered by the picker.
var CuratedGIFs = []string{
	"https://media.giphy.com/media/JIX9t2j0ZTN9S/giphy.gif",
	"https://media.giphy.com/media/ICOgUNjpvO0PC/giphy.gif",
	"https://media.giphy.com/media/l0MYt5jPR6QX5pnqM/giphy.gif",
	"https://media.giphy.com/media/13CoXDiaCcCoyk/giphy.gif",
	"https://media.giphy.com/media/3o7aD2saalBwwftBIY/giphy.gif",
	"https://media.giphy.com/media/5GoVLqeAOo6PK/giphy.gif",
	"https://media.giphy.com/media/ASd0Ukj0y3qMM/giphy.gif",
	"https://media.giphy.com/media/1dIo2wQp9QW4k/giphy.gif",
	"https://media.giphy.com/media/3orieQEA4Gx5U5l5sY/giphy.gif",
	"https://media.giphy.com/media/3o7TKtnuHOHHUjR38Y/giphy.gif",
	"https://media.giphy.com/media/13HgwGsXF0aiGY/giphy.gif",
	"https://media.giphy.com/media/3o6ZtpxSZbQRRnwCKQ/giphy.gif",
	"https://media.giphy.com/media/3oEjI6SIIHBdRxXI40/giphy.gif",
	"https://media.giphy.com/media/3o7aTskHEUdgCQAXde/giphy.gif",
	"https://media.giphy.com/media/3o6Zt481isNVuQI1l6/giphy.gif",
	"https://media.giphy.com/media/26ufdipQqU2lhNA4g/giphy.gif",
}

// IsCuratedGIF reports whether url belongs to CuratedGIFs.
func IsCuratedGIF(url string) bool {
	for _, g := range CuratedGIFs {
		if g == url {
			return true
		}
	}
	return false
}
