package template

// ShellCSS hides the viewer chrome that the export leaves in every topic and
// lets the content define the page size.
const ShellCSS = `
#header, #footer, .header, .footer, .navigation, nav, .toolbar {
  display: none !important;
}

html, body {
  margin: 0 !important;
  padding: 0 !important;
}

body {
  display: inline-block;
  min-width: 1px;
  -webkit-print-color-adjust: exact;
  print-color-adjust: exact;
}

img {
  max-width: 100%;
}
`
