package loopnet_test

import (
	"fmt"
	"strings"
)

const defaultPlacard = `
<article class="placard" data-id="1001">
  <header>
    <h4><a href="https://www.loopnet.ca/Listing/100-King-St-W-Toronto-ON/1001/">100 King St W</a></h4>
    <h6 class="subtitle-beta">Toronto, ON M5X 1A9</h6>
  </header>
  <figure style="background-image: url('https://images.loopnet.ca/1001/a.jpg')">
    <img src="https://images.loopnet.ca/1001/b.jpg">
  </figure>
  <figure><img lazy-src="https://images.loopnet.ca/1001/c.jpg"></figure>
  <ul class="data-points-2c">
    <li name="Price">$1,234,567 CAD/SF/YR</li>
    <li>Built in 1987</li>
    <li>12,500 SF Office</li>
  </ul>
  <ul class="company-logos">
    <li class="company-name"><p>CBRE Limited</p></li>
  </ul>
</article>`

const tier2Placard = `
<article class="placard tier2" data-id="2002">
  <header>
    <h4><a href="https://www.loopnet.ca/Listing/55-Main-St-Hamilton-ON/2002/">55 Main St</a></h4>
    <h6><a href="#">Hamilton, ON L8P 4Y5</a></h6>
    <div class="text-right"><h4><a href="#">3,400 SF</a></h4></div>
  </header>
  <ul class="data-points">
    <li>Retail</li>
    <li>Built in 1998</li>
    <li>9,999 SF Lot</li>
  </ul>
  <ul class="contacts"><li title="Colliers International"><img alt="Colliers"></li></ul>
</article>`

const tier2PricedPlacard = `
<article class="placard tier2" data-id="2003">
  <header>
    <h4><a href="/Listing/7-Bay-St/2003/">7 Bay St</a></h4>
    <h6><a href="#">Ottawa, ON</a></h6>
  </header>
  <ul class="data-points">
    <li>$25 - $30 CAD/SF/YR</li>
    <li>1,200 - 4,800 SF</li>
  </ul>
</article>`

const noDataPlacard = `
<article class="placard" data-id="3003">
  <header>
    <h4><a href="https://www.loopnet.ca/Listing/3003/">1 Empty Rd</a></h4>
    <h6 class="subtitle-beta">Calgary, AB</h6>
  </header>
  <ul class="company-logos"><li><img alt="Avison Young"></li></ul>
</article>`

// page wraps placards in a results page. An empty next means no next link.
func page(next string, placards ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><div class=\"placards\">")
	for _, p := range placards {
		b.WriteString(p)
	}
	b.WriteString("</div><div class=\"paging\">")
	if next != "" {
		fmt.Fprintf(&b, `<a data-automation-id="NextPage" href="%s">Next</a>`, next)
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

// placard builds a minimal default placard with the given id.
func placard(id string) string {
	return fmt.Sprintf(`
<article class="placard" data-id="%[1]s">
  <header>
    <h4><a href="https://www.loopnet.ca/Listing/%[1]s/">%[1]s Queen St</a></h4>
    <h6 class="subtitle-beta">Toronto, ON</h6>
  </header>
  <ul class="data-points-2c"><li name="Price">$100</li></ul>
</article>`, id)
}
