// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under AGPL-3.0 — See LICENSE for terms.
// Analysis intelligence — also maintained under separate proprietary license.
package hosting

import "regexp"

// providerPattern is one row of a fingerprint table: a compiled pattern, the
// provider it identifies, and how much weight a match carries. Tables are
// ordered and the first match wins, so put the specific entries before the
// broad ones. All inputs are lowercased before matching.
type providerPattern struct {
	re         *regexp.Regexp
	provider   string
	confidence float64
}

func matchPattern(patterns []providerPattern, value string) (providerPattern, bool) {
	for _, p := range patterns {
		if p.re.MatchString(value) {
			return p, true
		}
	}
	return providerPattern{}, false
}

// domesticPTRPatterns matches reverse-DNS names of Russian hosting providers
// and clouds. PTR names are the strongest DNS-level signal because the
// address owner controls them, not the domain owner.
var domesticPTRPatterns = []providerPattern{
	{regexp.MustCompile(`timeweb\.`), "Timeweb", 0.95},
	{regexp.MustCompile(`\.beget\.(ru|com|tech)`), "Beget", 0.95},
	{regexp.MustCompile(`sprinthost\.ru`), "Sprinthost", 0.95},
	{regexp.MustCompile(`\.jino\.ru`), "Jino", 0.95},
	{regexp.MustCompile(`\.sweb\.ru|spaceweb\.`), "SpaceWeb", 0.95},
	{regexp.MustCompile(`ruvds\.com`), "RUVDS", 0.95},
	{regexp.MustCompile(`vdsina\.(ru|com)`), "VDSina", 0.95},
	{regexp.MustCompile(`firstvds\.ru|fvds\.ru`), "FirstVDS", 0.95},
	{regexp.MustCompile(`netangels\.ru`), "NetAngels", 0.95},
	{regexp.MustCompile(`hostland\.ru`), "Hostland", 0.95},
	{regexp.MustCompile(`hosting\.reg\.ru|\.reg\.ru$`), "REG.RU", 0.9},
	{regexp.MustCompile(`selectel\.(ru|org)|\.selcdn\.ru`), "Selectel", 0.9},
	{regexp.MustCompile(`masterhost\.ru`), "Masterhost", 0.9},
	{regexp.MustCompile(`mchost\.ru`), "McHost", 0.9},
	{regexp.MustCompile(`majordomo\.ru`), "Majordomo", 0.9},
	{regexp.MustCompile(`yandexcloud\.net|\.yandex\.net$`), "Yandex Cloud", 0.9},
	{regexp.MustCompile(`mcs\.mail\.ru|vkcloud`), "VK Cloud", 0.9},
	{regexp.MustCompile(`sbercloud|\.cloud\.ru$`), "Cloud.ru", 0.9},
	{regexp.MustCompile(`ispserver\.ru`), "ISPserver", 0.9},
	{regexp.MustCompile(`rusonyx\.ru`), "Rusonyx", 0.9},
	{regexp.MustCompile(`\.ihc\.ru`), "IHC", 0.9},
	{regexp.MustCompile(`hoster\.ru`), "Hoster.ru", 0.9},
	{regexp.MustCompile(`\.nic\.ru`), "RU-CENTER", 0.85},
	{regexp.MustCompile(`\.rt\.ru$|rostelecom`), "Rostelecom", 0.85},
	{regexp.MustCompile(`corbina\.ru|beeline\.ru`), "Beeline", 0.8},
	{regexp.MustCompile(`mtsbc\.ru|\.mts\.ru$`), "MTS", 0.8},
}

// foreignProviderPatterns matches reverse-DNS and CDN names of providers
// whose serving infrastructure sits outside the jurisdiction.
var foreignProviderPatterns = []providerPattern{
	{regexp.MustCompile(`cloudfront\.net`), "Amazon CloudFront", 0.9},
	{regexp.MustCompile(`amazonaws\.com`), "Amazon AWS", 0.85},
	{regexp.MustCompile(`cloudflare`), "Cloudflare", 0.85},
	{regexp.MustCompile(`1e100\.net|googleusercontent\.com|googlehosted`), "Google", 0.85},
	{regexp.MustCompile(`azure|cloudapp\.net`), "Microsoft Azure", 0.8},
	{regexp.MustCompile(`your-server\.de|hetzner`), "Hetzner", 0.9},
	{regexp.MustCompile(`ovh\.(net|ca|us)`), "OVH", 0.85},
	{regexp.MustCompile(`digitalocean`), "DigitalOcean", 0.9},
	{regexp.MustCompile(`linode|linodeusercontent`), "Akamai Linode", 0.9},
	{regexp.MustCompile(`vultr|choopa`), "Vultr", 0.9},
	{regexp.MustCompile(`fastly`), "Fastly", 0.85},
	{regexp.MustCompile(`akamai`), "Akamai", 0.85},
	{regexp.MustCompile(`contabo`), "Contabo", 0.9},
	{regexp.MustCompile(`leaseweb`), "Leaseweb", 0.85},
	{regexp.MustCompile(`scaleway|online\.net`), "Scaleway", 0.85},
	{regexp.MustCompile(`\.github\.io$|github\.com`), "GitHub", 0.85},
}

// domesticNSPatterns matches authoritative nameserver hostnames of Russian
// providers. A provider's NS usually means its hosting too, but it is a
// weaker claim than a PTR, so these confidences stay in the 0.7 band.
var domesticNSPatterns = []providerPattern{
	{regexp.MustCompile(`ns\d*\.timeweb\.(ru|org)`), "Timeweb", 0.75},
	{regexp.MustCompile(`ns\d*\.reg\.ru`), "REG.RU", 0.75},
	{regexp.MustCompile(`ns\d*\.beget\.(ru|com|pro)`), "Beget", 0.75},
	{regexp.MustCompile(`ns\d*\.sprinthost\.ru`), "Sprinthost", 0.75},
	{regexp.MustCompile(`ns\d*\.masterhost\.ru`), "Masterhost", 0.75},
	{regexp.MustCompile(`ns\d*\.jino\.ru`), "Jino", 0.75},
	{regexp.MustCompile(`ns\d*\.sweb\.ru`), "SpaceWeb", 0.75},
	{regexp.MustCompile(`ns\d*\.firstvds\.ru`), "FirstVDS", 0.75},
	{regexp.MustCompile(`ns\d*\.ruvds\.com`), "RUVDS", 0.7},
	{regexp.MustCompile(`ns\d*\.vdsina\.ru`), "VDSina", 0.7},
	{regexp.MustCompile(`dns\d*\.yandex\.net`), "Yandex 360", 0.7},
	{regexp.MustCompile(`ns\d*\.selectel\.(ru|org)`), "Selectel", 0.7},
	{regexp.MustCompile(`ns\d*(-\w+)?\.nic\.ru`), "RU-CENTER", 0.7},
	{regexp.MustCompile(`ns\d*\.majordomo\.ru`), "Majordomo", 0.7},
	{regexp.MustCompile(`ns\d*\.mchost\.ru`), "McHost", 0.7},
	{regexp.MustCompile(`ns\d*\.hoster\.ru`), "Hoster.ru", 0.7},
	{regexp.MustCompile(`ns\d*\.r01\.ru`), "R01", 0.7},
	{regexp.MustCompile(`ns\d*\.hostland\.ru`), "Hostland", 0.7},
	{regexp.MustCompile(`ns\d*\.netangels\.ru`), "NetAngels", 0.7},
}

// platformPatterns matches site-builder and PaaS origins wherever they leak:
// redirect targets, iframe and canonical URLs, script origins, generator
// tags. Russian builders are listed too; the arbiter consults
// domesticPlatformAllowlist to classify those as domestic.
var platformPatterns = []providerPattern{
	{regexp.MustCompile(`tildacdn|tilda\.(ws|cc)`), "Tilda", 0.9},
	{regexp.MustCompile(`ucoz\.(ru|net|com)|usite\.pro`), "uCoz", 0.85},
	{regexp.MustCompile(`nethouse\.ru`), "Nethouse", 0.85},
	{regexp.MustCompile(`flexbe\.(ru|com)`), "Flexbe", 0.85},
	{regexp.MustCompile(`craftum\.(ru|com)`), "Craftum", 0.85},
	{regexp.MustCompile(`lpmotor\.ru|lpmtr\.ru`), "LPmotor", 0.85},
	{regexp.MustCompile(`insales\.ru`), "InSales", 0.85},
	{regexp.MustCompile(`bitrix24site\.ru|bitrix24\.site`), "Bitrix24 Sites", 0.8},
	{regexp.MustCompile(`taplink\.(cc|ru)`), "Taplink", 0.8},
	{regexp.MustCompile(`vigbo\.com|gophotoweb`), "Vigbo", 0.8},
	{regexp.MustCompile(`vercel\.(app|com)`), "Vercel", 0.95},
	{regexp.MustCompile(`netlify\.(app|com)|netlify`), "Netlify", 0.95},
	{regexp.MustCompile(`github\.io|githubusercontent\.com`), "GitHub Pages", 0.9},
	{regexp.MustCompile(`gitlab\.io`), "GitLab Pages", 0.9},
	{regexp.MustCompile(`herokuapp\.com|herokudns\.com`), "Heroku", 0.9},
	{regexp.MustCompile(`pages\.dev`), "Cloudflare Pages", 0.9},
	{regexp.MustCompile(`workers\.dev`), "Cloudflare Workers", 0.9},
	{regexp.MustCompile(`webflow\.io|website-files\.com|webflow`), "Webflow", 0.9},
	{regexp.MustCompile(`wixsite\.com|wix\.com|parastorage\.com|wixstatic\.com`), "Wix", 0.9},
	{regexp.MustCompile(`squarespace`), "Squarespace", 0.9},
	{regexp.MustCompile(`myshopify\.com|shopify`), "Shopify", 0.9},
	{regexp.MustCompile(`framerusercontent\.com|framer\.(app|website)`), "Framer", 0.9},
	{regexp.MustCompile(`firebaseapp\.com|\.web\.app`), "Firebase Hosting", 0.9},
	{regexp.MustCompile(`onrender\.com`), "Render", 0.9},
	{regexp.MustCompile(`fly\.dev`), "Fly.io", 0.9},
	{regexp.MustCompile(`weebly\.com|weeblysite\.com`), "Weebly", 0.85},
	{regexp.MustCompile(`notion\.site`), "Notion Sites", 0.85},
	{regexp.MustCompile(`carrd\.co`), "Carrd", 0.85},
	{regexp.MustCompile(`surge\.sh`), "Surge", 0.85},
	{regexp.MustCompile(`appspot\.com`), "Google App Engine", 0.85},
	{regexp.MustCompile(`azurewebsites\.net|azurestaticapps\.net`), "Azure App Service", 0.85},
	{regexp.MustCompile(`ghost\.io`), "Ghost(Pro)", 0.85},
	{regexp.MustCompile(`strikingly\.com`), "Strikingly", 0.85},
	{regexp.MustCompile(`jimdosite\.com|jimdo\.com`), "Jimdo", 0.85},
	{regexp.MustCompile(`godaddysites\.com`), "GoDaddy Website Builder", 0.85},
	{regexp.MustCompile(`hs-sites\.com|hubspotpagebuilder`), "HubSpot CMS", 0.85},
	{regexp.MustCompile(`unbouncepages\.com`), "Unbounce", 0.85},
	{regexp.MustCompile(`s3-website[.-]|s3\.amazonaws\.com`), "Amazon S3", 0.85},
	{regexp.MustCompile(`repl\.co|replit\.app`), "Replit", 0.8},
	{regexp.MustCompile(`glitch\.me`), "Glitch", 0.8},
	{regexp.MustCompile(`readymag\.com`), "Readymag", 0.8},
	{regexp.MustCompile(`wordpress\.com|\.wp\.com`), "WordPress.com", 0.8},
}

// domesticPlatformAllowlist names the site builders from platformPatterns
// whose serving infrastructure is inside Russia. A platform hit on one of
// these is still a platform hit, it just resolves to domestic.
var domesticPlatformAllowlist = map[string]bool{
	"Tilda":          true,
	"uCoz":           true,
	"Nethouse":       true,
	"Flexbe":         true,
	"Craftum":        true,
	"LPmotor":        true,
	"InSales":        true,
	"Bitrix24 Sites": true,
	"Taplink":        true,
	"Vigbo":          true,
}

// platformMarkers are literal page artifacts unique to one platform. They are
// scanned against the whole body after the structural checks, so they only
// ever add to or seed a verdict, never override a structural match.
var platformMarkers = []providerPattern{
	{regexp.MustCompile(`<!-- this is squarespace`), "Squarespace", 0.85},
	{regexp.MustCompile(`data-wf-site=`), "Webflow", 0.85},
	{regexp.MustCompile(`cdn\.shopify\.com`), "Shopify", 0.85},
	{regexp.MustCompile(`static\.parastorage\.com`), "Wix", 0.85},
	{regexp.MustCompile(`framerusercontent\.com`), "Framer", 0.85},
	{regexp.MustCompile(`data-tilda-`), "Tilda", 0.9},
	{regexp.MustCompile(`content="tilda`), "Tilda", 0.9},
	{regexp.MustCompile(`window\.netlifyidentity`), "Netlify", 0.75},
}

// headerFingerprint names a response header that identifies the edge serving
// the request. Headers describe the edge, not necessarily the origin, so they
// are recorded as evidence without deciding the verdict on their own.
type headerFingerprint struct {
	header   string
	provider string
}

var headerFingerprints = []headerFingerprint{
	{"CF-Ray", "Cloudflare"},
	{"X-Vercel-Id", "Vercel"},
	{"X-Nf-Request-Id", "Netlify"},
	{"X-Github-Request-Id", "GitHub Pages"},
	{"X-Served-By", "Fastly"},
	{"X-Amz-Cf-Id", "Amazon CloudFront"},
	{"X-Amz-Request-Id", "Amazon S3"},
	{"Fly-Request-Id", "Fly.io"},
	{"X-Render-Origin-Server", "Render"},
}

// domesticCcTLDs contribute a weak last-resort signal when nothing else
// matched. The punycode form covers .рф.
var domesticCcTLDs = []string{".ru", ".su", ".xn--p1ai", ".moscow", ".xn--80adxhks"}
